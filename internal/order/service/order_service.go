package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
	"courier/internal/events"
	"courier/internal/geo"
	"courier/internal/idgen"
	"courier/internal/matching"
	partnersvc "courier/internal/partner/service"
)

type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Find(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	ExistsOrderNumber(ctx context.Context, orderNumber string) (bool, error)
	SaveTransition(ctx context.Context, order *domain.Order, expected domain.OrderStatus, update domain.TrackingUpdate) error
}

type BuyerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Buyer, error)
}

type TravelerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Traveler, error)
	FindActive(ctx context.Context) ([]domain.Traveler, error)
}

type PartnerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Partner, error)
}

type PartnerSearcher interface {
	SearchNearby(ctx context.Context, q partnersvc.SearchQuery) ([]matching.NearbyPartner, error)
}

type TravelerMatcher interface {
	FindCandidates(info domain.OrderInfo, buyerCity string, pool []domain.Traveler) []domain.Traveler
}

type FeeCalculator interface {
	Known(mechanism string) bool
	Fee(mechanism string, distanceKm float64) float64
}

type EventEmitter interface {
	Emit(ctx context.Context, eventType, aggregateID string, payload interface{})
}

type Options struct {
	Currency             string
	MaxPartnerCandidates int
	MaxRequestPartners   int
	SearchRadiusKm       float64
	NumberMaxAttempts    int
	WriteMaxAttempts     int
	WriteTimeout         time.Duration
}

type Dependencies struct {
	Orders    OrderRepository
	Buyers    BuyerRepository
	Travelers TravelerRepository
	Partners  PartnerRepository
	Searcher  PartnerSearcher
	Matcher   TravelerMatcher
	Fees      FeeCalculator
	Events    EventEmitter
}

type OrderService struct {
	orders    OrderRepository
	buyers    BuyerRepository
	travelers TravelerRepository
	partners  PartnerRepository
	searcher  PartnerSearcher
	matcher   TravelerMatcher
	fees      FeeCalculator
	events    EventEmitter
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(deps Dependencies, opts Options, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:    deps.Orders,
		buyers:    deps.Buyers,
		travelers: deps.Travelers,
		partners:  deps.Partners,
		searcher:  deps.Searcher,
		matcher:   deps.Matcher,
		fees:      deps.Fees,
		events:    deps.Events,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateOrderInput struct {
	BuyerID          string
	DeliveryMethod   string
	Info             domain.OrderInfo
	PickupLocation   *domain.Location
	DeliveryLocation *domain.Location
	ItemValue        float64
}

// CreateOrderResult holds the new order and up to the configured number of
// candidates for its delivery method. Candidates are suggestions only.
type CreateOrderResult struct {
	Order              *domain.Order
	TravelerCandidates []domain.Traveler
	PartnerCandidates  []matching.NearbyPartner
}

// Candidates returns whichever candidate list applies to the order.
func (r *CreateOrderResult) Candidates() interface{} {
	if r.Order.DeliveryMethod == domain.DeliveryMethodPartner {
		return r.PartnerCandidates
	}
	return r.TravelerCandidates
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	method, err := validateCreateOrder(in)
	if err != nil {
		return nil, err
	}

	buyer, err := s.buyers.FindByID(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}

	order, err := s.newOrder(ctx, buyer.ID, method, in.Info)
	if err != nil {
		return nil, err
	}
	order.PickupLocation = in.PickupLocation
	order.DeliveryLocation = in.DeliveryLocation
	order.Pricing.ItemValue = in.ItemValue

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("buyerId", buyer.ID),
		zap.String("deliveryMethod", string(method)),
	)
	s.events.Emit(ctx, events.TypeOrderCreated, order.ID, order)

	result := &CreateOrderResult{
		Order:              order,
		TravelerCandidates: []domain.Traveler{},
		PartnerCandidates:  []matching.NearbyPartner{},
	}

	switch method {
	case domain.DeliveryMethodTraveler:
		pool, err := s.travelers.FindActive(ctx)
		if err != nil {
			s.logger.Warn("traveler candidate lookup failed", zap.String("orderId", order.ID), zap.Error(err))
			break
		}
		result.TravelerCandidates = s.matcher.FindCandidates(order.Info, buyer.City, pool)
	case domain.DeliveryMethodPartner:
		if !order.PickupLocation.HasCoordinates() {
			break
		}
		nearby, err := s.searcher.SearchNearby(ctx, partnersvc.SearchQuery{
			Latitude:  order.PickupLocation.Latitude,
			Longitude: order.PickupLocation.Longitude,
			RadiusKm:  s.opts.SearchRadiusKm,
			Limit:     s.opts.MaxPartnerCandidates,
		})
		if err != nil {
			s.logger.Warn("partner candidate lookup failed", zap.String("orderId", order.ID), zap.Error(err))
			break
		}
		result.PartnerCandidates = nearby
	}

	return result, nil
}

func validateCreateOrder(in CreateOrderInput) (domain.DeliveryMethod, error) {
	var details []apperrors.ValidationDetail

	if in.BuyerID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "buyerId", Message: "buyerId is required"})
	}

	method, ok := domain.ParseDeliveryMethod(in.DeliveryMethod)
	if !ok {
		details = append(details, apperrors.ValidationDetail{
			Field:   "deliveryMethod",
			Message: "deliveryMethod must be one of traveler, partner",
		})
	}

	if in.Info.ProductName == "" {
		details = append(details, apperrors.ValidationDetail{Field: "orderInfo.productName", Message: "productName is required"})
	}

	if in.ItemValue < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "itemValue", Message: "itemValue must be non-negative"})
	}

	details = append(details, validateLocation("pickupLocation", in.PickupLocation)...)
	details = append(details, validateLocation("deliveryLocation", in.DeliveryLocation)...)

	if len(details) > 0 {
		return "", apperrors.NewValidationError("validation failed", details...)
	}
	return method, nil
}

func validateLocation(field string, loc *domain.Location) []apperrors.ValidationDetail {
	if loc == nil || geo.ValidCoordinate(loc.Latitude, loc.Longitude) {
		return nil
	}
	return []apperrors.ValidationDetail{{
		Field:   field,
		Message: "coordinates must be within [-90, 90] and [-180, 180]",
	}}
}

func (s *OrderService) newOrder(ctx context.Context, buyerID string, method domain.DeliveryMethod, info domain.OrderInfo) (*domain.Order, error) {
	now := s.now()
	number, err := idgen.Unique(ctx, "order number", s.opts.NumberMaxAttempts,
		func() string { return idgen.OrderNumber(now) }, s.orders.ExistsOrderNumber)
	if err != nil {
		return nil, err
	}
	return domain.NewOrder(uuid.New().String(), number, buyerID, method, info, s.opts.Currency, now), nil
}

type ListOrdersInput struct {
	Status         string
	DeliveryMethod string
	BuyerID        string
	Limit          int
}

func (s *OrderService) ListOrders(ctx context.Context, in ListOrdersInput) ([]domain.Order, error) {
	filter := domain.OrderFilter{BuyerID: in.BuyerID, Limit: in.Limit}

	var details []apperrors.ValidationDetail
	if in.Status != "" {
		status, ok := domain.ParseOrderStatus(in.Status)
		if !ok {
			details = append(details, apperrors.ValidationDetail{Field: "status", Message: fmt.Sprintf("unknown order status %q", in.Status)})
		}
		filter.Status = status
	}
	if in.DeliveryMethod != "" {
		method, ok := domain.ParseDeliveryMethod(in.DeliveryMethod)
		if !ok {
			details = append(details, apperrors.ValidationDetail{Field: "deliveryMethod", Message: fmt.Sprintf("unknown delivery method %q", in.DeliveryMethod)})
		}
		filter.DeliveryMethod = method
	}
	if in.Limit < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "limit", Message: "limit must be non-negative"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid order filter", details...)
	}

	return s.orders.Find(ctx, filter)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "id", Message: "id is required"})
	}
	return s.orders.FindByID(ctx, id)
}
