package service

import (
	"context"

	"go.uber.org/zap"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
	"courier/internal/events"
	"courier/internal/geo"
	"courier/internal/matching"
	partnersvc "courier/internal/partner/service"
)

const defaultRequestProductName = "Delivery request"

type DeliveryRequestInput struct {
	BuyerID          string
	PickupLocation   *domain.Location
	DeliveryLocation *domain.Location
	ItemDescription  string
}

// QuotedPartner is a nearby partner with the estimated fee for the trip.
// EstimatedFee is nil when the partner's mechanism has no rate.
type QuotedPartner struct {
	matching.NearbyPartner
	EstimatedFee *float64 `json:"estimatedFee"`
}

type DeliveryRequestResult struct {
	Order            *domain.Order   `json:"order"`
	TripDistanceKm   float64         `json:"tripDistanceKm"`
	TripDistanceText string          `json:"tripDistanceText"`
	Partners         []QuotedPartner `json:"partners"`
}

// CreateDeliveryRequest books a partner order between two coordinates and
// quotes the closest dispatchable partners for it.
func (s *OrderService) CreateDeliveryRequest(ctx context.Context, in DeliveryRequestInput) (*DeliveryRequestResult, error) {
	if err := validateDeliveryRequest(in); err != nil {
		return nil, err
	}

	buyer, err := s.buyers.FindByID(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}

	info := domain.OrderInfo{
		ProductName:         defaultRequestProductName,
		Description:         in.ItemDescription,
		DeliveryDestination: destinationLabel(in.DeliveryLocation),
	}
	if in.ItemDescription != "" {
		info.ProductName = in.ItemDescription
	}

	order, err := s.newOrder(ctx, buyer.ID, domain.DeliveryMethodPartner, info)
	if err != nil {
		return nil, err
	}
	order.PickupLocation = in.PickupLocation
	order.DeliveryLocation = in.DeliveryLocation

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}
	s.events.Emit(ctx, events.TypeOrderCreated, order.ID, order)

	tripKm := geo.DistanceKm(in.PickupLocation.Latitude, in.PickupLocation.Longitude,
		in.DeliveryLocation.Latitude, in.DeliveryLocation.Longitude)

	result := &DeliveryRequestResult{
		Order:            order,
		TripDistanceKm:   geo.Round2(tripKm),
		TripDistanceText: geo.FormatDistance(tripKm),
		Partners:         []QuotedPartner{},
	}

	nearby, err := s.searcher.SearchNearby(ctx, partnersvc.SearchQuery{
		Latitude:  in.PickupLocation.Latitude,
		Longitude: in.PickupLocation.Longitude,
		RadiusKm:  s.opts.SearchRadiusKm,
		Limit:     s.opts.MaxRequestPartners,
	})
	if err != nil {
		s.logger.Warn("partner lookup for delivery request failed", zap.String("orderId", order.ID), zap.Error(err))
		return result, nil
	}

	for _, p := range nearby {
		quoted := QuotedPartner{NearbyPartner: p}
		if s.fees.Known(p.DeliveryMechanism) {
			fee := geo.Round2(s.fees.Fee(p.DeliveryMechanism, tripKm))
			quoted.EstimatedFee = &fee
		}
		result.Partners = append(result.Partners, quoted)
	}

	s.logger.Info("delivery request created",
		zap.String("orderId", order.ID),
		zap.Float64("tripDistanceKm", result.TripDistanceKm),
		zap.Int("partners", len(result.Partners)),
	)

	return result, nil
}

func validateDeliveryRequest(in DeliveryRequestInput) error {
	var details []apperrors.ValidationDetail

	if in.BuyerID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "buyerId", Message: "buyerId is required"})
	}
	if !in.PickupLocation.HasCoordinates() {
		details = append(details, apperrors.ValidationDetail{Field: "pickupLocation", Message: "pickupLocation requires valid latitude and longitude"})
	}
	if !in.DeliveryLocation.HasCoordinates() {
		details = append(details, apperrors.ValidationDetail{Field: "deliveryLocation", Message: "deliveryLocation requires valid latitude and longitude"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func destinationLabel(loc *domain.Location) string {
	if loc.City != "" {
		return loc.City
	}
	return loc.Address
}
