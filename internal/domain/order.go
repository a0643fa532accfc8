package domain

import (
	"fmt"
	"time"

	apperrors "courier/internal/errors"
)

type DeliveryMethod string

const (
	DeliveryMethodTraveler DeliveryMethod = "traveler"
	DeliveryMethodPartner  DeliveryMethod = "partner"
)

func ParseDeliveryMethod(s string) (DeliveryMethod, bool) {
	switch m := DeliveryMethod(s); m {
	case DeliveryMethodTraveler, DeliveryMethodPartner:
		return m, true
	}
	return "", false
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusMatched   OrderStatus = "matched"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusMatched, OrderStatusAssigned, OrderStatusCancelled},
	OrderStatusMatched:   {OrderStatusPickedUp, OrderStatusCancelled},
	OrderStatusAssigned:  {OrderStatusPickedUp, OrderStatusCancelled},
	OrderStatusPickedUp:  {OrderStatusInTransit, OrderStatusCancelled},
	OrderStatusInTransit: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted: nil,
	OrderStatusCancelled: nil,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", false
	}
	return status, true
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// Location is a structured address. Latitude and Longitude are only
// meaningful when HasCoordinates reports true.
type Location struct {
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
}

func (l *Location) HasCoordinates() bool {
	if l == nil {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180 &&
		!(l.Latitude == 0 && l.Longitude == 0)
}

type OrderInfo struct {
	ProductName           string     `json:"productName"`
	Description           string     `json:"description,omitempty"`
	Quantity              string     `json:"quantity,omitempty"`
	CountryOfOrigin       string     `json:"countryOfOrigin,omitempty"`
	DeliveryDestination   string     `json:"deliveryDestination,omitempty"`
	PreferredDeliveryDate *time.Time `json:"preferredDeliveryDate,omitempty"`
	Media                 []string   `json:"media,omitempty"`
}

// Destination is the first non-empty of the delivery destination, the
// country of origin and the fallback city.
func (i OrderInfo) Destination(fallbackCity string) string {
	if i.DeliveryDestination != "" {
		return i.DeliveryDestination
	}
	if i.CountryOfOrigin != "" {
		return i.CountryOfOrigin
	}
	return fallbackCity
}

type Pricing struct {
	ItemValue   float64 `json:"itemValue"`
	DeliveryFee float64 `json:"deliveryFee"`
	ServiceFee  float64 `json:"serviceFee"`
	PlatformFee float64 `json:"platformFee"`
	TotalAmount float64 `json:"totalAmount"`
	Currency    string  `json:"currency"`
}

type TrackingUpdate struct {
	Status    OrderStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
	Location  string      `json:"location,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type Order struct {
	ID                  string           `json:"id"`
	OrderNumber         string           `json:"orderNumber"`
	BuyerID             string           `json:"buyerId"`
	DeliveryMethod      DeliveryMethod   `json:"deliveryMethod"`
	Info                OrderInfo        `json:"orderInfo"`
	PickupLocation      *Location        `json:"pickupLocation,omitempty"`
	DeliveryLocation    *Location        `json:"deliveryLocation,omitempty"`
	AssignedTravelerID  *string          `json:"assignedTravelerId"`
	AssignedPartnerID   *string          `json:"assignedPartnerId"`
	Status              OrderStatus      `json:"status"`
	TrackingUpdates     []TrackingUpdate `json:"trackingUpdates"`
	DeliveryConfirmed   bool             `json:"deliveryConfirmed"`
	DeliveryConfirmedAt *time.Time       `json:"deliveryConfirmedAt,omitempty"`
	PaymentStatus       PaymentStatus    `json:"paymentStatus"`
	Pricing             Pricing          `json:"pricing"`
	TransactionID       *string          `json:"transactionId,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

func NewOrder(id, orderNumber, buyerID string, method DeliveryMethod, info OrderInfo, currency string, now time.Time) *Order {
	return &Order{
		ID:              id,
		OrderNumber:     orderNumber,
		BuyerID:         buyerID,
		DeliveryMethod:  method,
		Info:            info,
		Status:          OrderStatusPending,
		TrackingUpdates: []TrackingUpdate{},
		PaymentStatus:   PaymentStatusPending,
		Pricing:         Pricing{Currency: currency},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AssignTraveler records the traveler and moves the order to matched.
func (o *Order) AssignTraveler(travelerID string, now time.Time) (TrackingUpdate, error) {
	if o.DeliveryMethod != DeliveryMethodTraveler {
		return TrackingUpdate{}, apperrors.NewInvalidStateError(
			fmt.Sprintf("order %s uses %s delivery and cannot be matched with a traveler", o.OrderNumber, o.DeliveryMethod))
	}
	if !o.Status.CanTransitionTo(OrderStatusMatched) {
		return TrackingUpdate{}, apperrors.NewTransitionError("order", string(o.Status), string(OrderStatusMatched))
	}
	o.AssignedTravelerID = &travelerID
	return o.apply(OrderStatusMatched, "Order matched with traveler", "", now), nil
}

// AssignPartner records the partner and moves the order to assigned.
func (o *Order) AssignPartner(partnerID string, now time.Time) (TrackingUpdate, error) {
	if o.DeliveryMethod != DeliveryMethodPartner {
		return TrackingUpdate{}, apperrors.NewInvalidStateError(
			fmt.Sprintf("order %s uses %s delivery and cannot be assigned to a partner", o.OrderNumber, o.DeliveryMethod))
	}
	if !o.Status.CanTransitionTo(OrderStatusAssigned) {
		return TrackingUpdate{}, apperrors.NewTransitionError("order", string(o.Status), string(OrderStatusAssigned))
	}
	o.AssignedPartnerID = &partnerID
	return o.apply(OrderStatusAssigned, "Order assigned to delivery partner", "", now), nil
}

// Transition applies a tracking-driven status change. Matching, assignment
// and completion have dedicated operations and are rejected here.
func (o *Order) Transition(next OrderStatus, message, location string, now time.Time) (TrackingUpdate, error) {
	switch next {
	case OrderStatusMatched, OrderStatusAssigned:
		return TrackingUpdate{}, apperrors.NewInvalidStateError(
			fmt.Sprintf("status %q requires a traveler match or partner assignment", next))
	case OrderStatusCompleted:
		return TrackingUpdate{}, apperrors.NewInvalidStateError("status \"completed\" requires delivery confirmation")
	}
	if !o.Status.CanTransitionTo(next) {
		return TrackingUpdate{}, apperrors.NewTransitionError("order", string(o.Status), string(next))
	}
	if message == "" {
		message = fmt.Sprintf("Order status updated to %s", next)
	}
	return o.apply(next, message, location, now), nil
}

func (o *Order) ConfirmDelivery(now time.Time) (TrackingUpdate, error) {
	if o.Status != OrderStatusDelivered {
		return TrackingUpdate{}, apperrors.NewInvalidStateError(
			fmt.Sprintf("delivery can only be confirmed when the order is delivered, current status is %q", o.Status))
	}
	o.DeliveryConfirmed = true
	o.DeliveryConfirmedAt = &now
	return o.apply(OrderStatusCompleted, "Delivery confirmed by buyer", "", now), nil
}

func (o *Order) apply(status OrderStatus, message, location string, now time.Time) TrackingUpdate {
	update := TrackingUpdate{
		Status:    status,
		Message:   message,
		Location:  location,
		Timestamp: now,
	}
	o.Status = status
	o.TrackingUpdates = append(o.TrackingUpdates, update)
	o.UpdatedAt = now
	return update
}

// OrderFilter narrows order listings. Empty fields match everything.
type OrderFilter struct {
	Status         OrderStatus
	DeliveryMethod DeliveryMethod
	BuyerID        string
	Limit          int
}
