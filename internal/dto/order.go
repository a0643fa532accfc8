package dto

import "courier/internal/domain"

type CreateOrderRequest struct {
	BuyerID          string           `json:"buyerId"`
	DeliveryMethod   string           `json:"deliveryMethod"`
	OrderInfo        domain.OrderInfo `json:"orderInfo"`
	PickupLocation   *domain.Location `json:"pickupLocation,omitempty"`
	DeliveryLocation *domain.Location `json:"deliveryLocation,omitempty"`
	ItemValue        float64          `json:"itemValue,omitempty"`
}

type CreateOrderResponse struct {
	Order      *domain.Order `json:"order"`
	Candidates interface{}   `json:"candidates"`
}

type MatchTravelerRequest struct {
	OrderID    string `json:"orderId"`
	TravelerID string `json:"travelerId"`
}

type AssignPartnerRequest struct {
	OrderID   string `json:"orderId"`
	PartnerID string `json:"partnerId"`
}

type UpdateOrderStatusRequest struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Location string `json:"location,omitempty"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

type DeliveryRequest struct {
	BuyerID          string           `json:"buyerId"`
	PickupLocation   *domain.Location `json:"pickupLocation"`
	DeliveryLocation *domain.Location `json:"deliveryLocation"`
	ItemDescription  string           `json:"itemDescription,omitempty"`
}
