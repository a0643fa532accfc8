package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
	"courier/internal/events"
	"courier/internal/infrastructure/mysql"
)

type statusChange struct {
	OrderNumber string             `json:"orderNumber"`
	From        domain.OrderStatus `json:"from"`
	To          domain.OrderStatus `json:"to"`
	Message     string             `json:"message,omitempty"`
}

type mutation func(order *domain.Order, now time.Time) (domain.TrackingUpdate, error)

// mutate loads the order, applies fn and saves the result against the status
// that was read. Deadlocks are retried; a concurrent status change surfaces
// as a ConflictError.
func (s *OrderService) mutate(ctx context.Context, orderID string, fn mutation) (*domain.Order, error) {
	if s.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.WriteTimeout)
		defer cancel()
	}

	var (
		order    *domain.Order
		previous domain.OrderStatus
		update   domain.TrackingUpdate
	)

	err := mysql.RetryOnDeadlock(ctx, s.opts.WriteMaxAttempts, s.logger, func(ctx context.Context) error {
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		expected := current.Status
		u, err := fn(current, s.now())
		if err != nil {
			return err
		}

		if err := s.orders.SaveTransition(ctx, current, expected, u); err != nil {
			return err
		}

		order, previous, update = current, expected, u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("orderId", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)
	s.events.Emit(ctx, events.TypeOrderStatusChanged, order.ID, statusChange{
		OrderNumber: order.OrderNumber,
		From:        previous,
		To:          order.Status,
		Message:     update.Message,
	})

	return order, nil
}

func (s *OrderService) MatchWithTraveler(ctx context.Context, orderID, travelerID string) (*domain.Order, error) {
	if err := requireIDs("travelerId", orderID, travelerID); err != nil {
		return nil, err
	}

	if _, err := s.travelers.FindByID(ctx, travelerID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error) {
		return o.AssignTraveler(travelerID, now)
	})
}

func (s *OrderService) AssignToPartner(ctx context.Context, orderID, partnerID string) (*domain.Order, error) {
	if err := requireIDs("partnerId", orderID, partnerID); err != nil {
		return nil, err
	}

	if _, err := s.partners.FindByID(ctx, partnerID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, orderID, func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error) {
		return o.AssignPartner(partnerID, now)
	})
}

// UpdateStatus applies a tracking update. Values outside the status enum
// fail with InvalidStateError before the order is read.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status, message, location string) (*domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("invalid order status %q", status))
	}

	return s.mutate(ctx, orderID, func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error) {
		return o.Transition(next, message, location, now)
	})
}

func (s *OrderService) ConfirmDelivery(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.mutate(ctx, orderID, func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error) {
		return o.ConfirmDelivery(now)
	})
}

func (s *OrderService) Cancel(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	if reason == "" {
		reason = "Order cancelled"
	}

	return s.mutate(ctx, orderID, func(o *domain.Order, now time.Time) (domain.TrackingUpdate, error) {
		return o.Transition(domain.OrderStatusCancelled, reason, "", now)
	})
}

func requireIDs(otherField, orderID, otherID string) error {
	var details []apperrors.ValidationDetail
	if orderID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "orderId", Message: "orderId is required"})
	}
	if otherID == "" {
		details = append(details, apperrors.ValidationDetail{Field: otherField, Message: otherField + " is required"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
