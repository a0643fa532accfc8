package dto

type FeesRequest struct {
	DeliveryFee *float64 `json:"deliveryFee,omitempty"`
	ServiceFee  *float64 `json:"serviceFee,omitempty"`
	PlatformFee *float64 `json:"platformFee,omitempty"`
	Total       *float64 `json:"total,omitempty"`
}

type CreateTransactionRequest struct {
	OrderID          string       `json:"orderId"`
	BuyerID          string       `json:"buyerId"`
	PaymentMethod    string       `json:"paymentMethod"`
	Amount           float64      `json:"amount"`
	Currency         string       `json:"currency,omitempty"`
	Fees             *FeesRequest `json:"fees,omitempty"`
	PaymentReference string       `json:"paymentReference,omitempty"`
	PaymentProof     string       `json:"paymentProof,omitempty"`
	Notes            string       `json:"notes,omitempty"`
}

type UpdateTransactionRequest struct {
	Status       string `json:"status"`
	PaymentProof string `json:"paymentProof,omitempty"`
	Notes        string `json:"notes,omitempty"`
}
