package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/dto"
	apperrors "courier/internal/errors"
	"courier/internal/order/service"
	"courier/internal/server/respond"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (*service.CreateOrderResult, error)
	ListOrders(ctx context.Context, in service.ListOrdersInput) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	MatchWithTraveler(ctx context.Context, orderID, travelerID string) (*domain.Order, error)
	AssignToPartner(ctx context.Context, orderID, partnerID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status, message, location string) (*domain.Order, error)
	ConfirmDelivery(ctx context.Context, orderID string) (*domain.Order, error)
	Cancel(ctx context.Context, orderID, reason string) (*domain.Order, error)
	CreateDeliveryRequest(ctx context.Context, in service.DeliveryRequestInput) (*service.DeliveryRequestResult, error)
}

type OrderController struct {
	service OrderService
	logger  *zap.Logger
}

func NewOrderController(service OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{
		service: service,
		logger:  logger,
	}
}

func (c *OrderController) request(r *http.Request) (string, *zap.Logger) {
	traceID := respond.NewTraceID()
	return traceID, c.logger.With(zap.String("traceId", traceID), zap.String("path", r.URL.Path))
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	var req dto.CreateOrderRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	result, err := c.service.CreateOrder(r.Context(), service.CreateOrderInput{
		BuyerID:          req.BuyerID,
		DeliveryMethod:   req.DeliveryMethod,
		Info:             req.OrderInfo,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		ItemValue:        req.ItemValue,
	})
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusCreated, traceID, dto.CreateOrderResponse{
		Order:      result.Order,
		Candidates: result.Candidates(),
	})
}

func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)
	query := r.URL.Query()

	in := service.ListOrdersInput{
		Status:         query.Get("status"),
		DeliveryMethod: query.Get("deliveryMethod"),
		BuyerID:        query.Get("buyerId"),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respond.ValidationError(w, r, traceID, "invalid limit", apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be an integer",
			})
			return
		}
		in.Limit = limit
	}

	orders, err := c.service.ListOrders(r.Context(), in)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, orders)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	order, err := c.service.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, order)
}

func (c *OrderController) MatchWithTraveler(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	var req dto.MatchTravelerRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	order, err := c.service.MatchWithTraveler(r.Context(), req.OrderID, req.TravelerID)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, order)
}

func (c *OrderController) AssignToPartner(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	var req dto.AssignPartnerRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	order, err := c.service.AssignToPartner(r.Context(), req.OrderID, req.PartnerID)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, order)
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	var req dto.UpdateOrderStatusRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status, req.Message, req.Location)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, order)
}

func (c *OrderController) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	order, err := c.service.ConfirmDelivery(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, order)
}

func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	var req dto.CancelOrderRequest
	if !respond.DecodeOptionalJSON(w, r, traceID, &req, logger) {
		return
	}

	order, err := c.service.Cancel(r.Context(), chi.URLParam(r, "orderId"), req.Reason)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, order)
}

func (c *OrderController) CreateDeliveryRequest(w http.ResponseWriter, r *http.Request) {
	traceID, logger := c.request(r)

	var req dto.DeliveryRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	result, err := c.service.CreateDeliveryRequest(r.Context(), service.DeliveryRequestInput{
		BuyerID:          req.BuyerID,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		ItemDescription:  req.ItemDescription,
	})
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusCreated, traceID, result)
}
