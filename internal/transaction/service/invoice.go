package service

import (
	"context"
	"fmt"
	"time"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
)

type InvoiceOrder struct {
	ID                  string                `json:"id"`
	OrderNumber         string                `json:"orderNumber"`
	ProductName         string                `json:"productName"`
	Quantity            string                `json:"quantity,omitempty"`
	DeliveryMethod      domain.DeliveryMethod `json:"deliveryMethod"`
	DeliveryDestination string                `json:"deliveryDestination,omitempty"`
	Status              domain.OrderStatus    `json:"status"`
}

// Invoice is the denormalized view of a completed transaction.
type Invoice struct {
	InvoiceNumber string              `json:"invoiceNumber"`
	ReceiptNumber string              `json:"receiptNumber"`
	PaidAt        time.Time           `json:"paidAt"`
	PaymentMethod string              `json:"paymentMethod"`
	Amount        float64             `json:"amount"`
	Currency      string              `json:"currency"`
	Fees          domain.Fees         `json:"fees"`
	Buyer         domain.Buyer        `json:"buyer"`
	Order         InvoiceOrder        `json:"order"`
	Transaction   *domain.Transaction `json:"transaction"`
}

func (s *LedgerService) GenerateInvoice(ctx context.Context, id string) (*Invoice, error) {
	t, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if t.Status != domain.TransactionStatusCompleted || t.InvoiceNumber == nil {
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("invoice is only available for completed transactions, current status is %q", t.Status))
	}

	order, err := s.orders.FindByID(ctx, t.OrderID)
	if err != nil {
		return nil, err
	}

	buyer, err := s.buyers.FindByID(ctx, t.BuyerID)
	if err != nil {
		return nil, err
	}

	invoice := &Invoice{
		InvoiceNumber: *t.InvoiceNumber,
		PaymentMethod: t.PaymentMethod,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Fees:          t.Fees,
		Buyer:         *buyer,
		Order: InvoiceOrder{
			ID:                  order.ID,
			OrderNumber:         order.OrderNumber,
			ProductName:         order.Info.ProductName,
			Quantity:            order.Info.Quantity,
			DeliveryMethod:      order.DeliveryMethod,
			DeliveryDestination: order.Info.DeliveryDestination,
			Status:              order.Status,
		},
		Transaction: t,
	}
	if t.ReceiptNumber != nil {
		invoice.ReceiptNumber = *t.ReceiptNumber
	}
	if t.PaidAt != nil {
		invoice.PaidAt = *t.PaidAt
	}

	return invoice, nil
}
