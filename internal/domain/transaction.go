package domain

import (
	"time"

	apperrors "courier/internal/errors"
)

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusRefunded   TransactionStatus = "refunded"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// Every status may be re-applied to itself so retried updates stay idempotent.
var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending:    {TransactionStatusProcessing, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled},
	TransactionStatusProcessing: {TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled},
	TransactionStatusCompleted:  {TransactionStatusRefunded},
	TransactionStatusFailed:     {TransactionStatusPending},
	TransactionStatusRefunded:   nil,
	TransactionStatusCancelled:  nil,
}

func ParseTransactionStatus(s string) (TransactionStatus, bool) {
	status := TransactionStatus(s)
	if _, ok := transactionTransitions[status]; !ok {
		return "", false
	}
	return status, true
}

func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus is the order-side mirror of the transaction status.
func (s TransactionStatus) PaymentStatus() (PaymentStatus, bool) {
	switch s {
	case TransactionStatusCompleted:
		return PaymentStatusPaid, true
	case TransactionStatusFailed:
		return PaymentStatusFailed, true
	case TransactionStatusRefunded:
		return PaymentStatusRefunded, true
	}
	return "", false
}

const TransactionTypePayment = "payment"

type Fees struct {
	DeliveryFee float64 `json:"deliveryFee"`
	ServiceFee  float64 `json:"serviceFee"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
}

// NewFees defaults missing components to zero and derives the total from
// them unless one is given.
func NewFees(deliveryFee, serviceFee, platformFee, total *float64) Fees {
	fees := Fees{
		DeliveryFee: valueOrZero(deliveryFee),
		ServiceFee:  valueOrZero(serviceFee),
		PlatformFee: valueOrZero(platformFee),
	}
	if total != nil {
		fees.Total = *total
	} else {
		fees.Total = fees.DeliveryFee + fees.ServiceFee + fees.PlatformFee
	}
	return fees
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

type PaymentDetails struct {
	Reference string `json:"reference,omitempty"`
	ProofURL  string `json:"paymentProof,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type Transaction struct {
	ID             string            `json:"id"`
	OrderID        string            `json:"orderId"`
	BuyerID        string            `json:"buyerId"`
	Type           string            `json:"transactionType"`
	PaymentMethod  string            `json:"paymentMethod"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	Fees           Fees              `json:"fees"`
	Status         TransactionStatus `json:"status"`
	PaymentDetails PaymentDetails    `json:"paymentDetails"`
	InvoiceNumber  *string           `json:"invoiceNumber,omitempty"`
	ReceiptNumber  *string           `json:"receiptNumber,omitempty"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func NewTransaction(id, orderID, buyerID, paymentMethod string, amount float64, currency string, fees Fees, now time.Time) *Transaction {
	return &Transaction{
		ID:            id,
		OrderID:       orderID,
		BuyerID:       buyerID,
		Type:          TransactionTypePayment,
		PaymentMethod: paymentMethod,
		Amount:        amount,
		Currency:      currency,
		Fees:          fees,
		Status:        TransactionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (t *Transaction) Transition(next TransactionStatus, now time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return apperrors.NewTransitionError("transaction", string(t.Status), string(next))
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}

// NeedsDocumentNumbers reports whether completing the transaction still has
// to issue invoice and receipt numbers.
func (t *Transaction) NeedsDocumentNumbers() bool {
	return t.Status == TransactionStatusCompleted && t.InvoiceNumber == nil
}

// IssueDocumentNumbers sets the invoice number, receipt number and paid date.
// Values already present are never replaced.
func (t *Transaction) IssueDocumentNumbers(invoiceNumber, receiptNumber string, now time.Time) {
	if t.InvoiceNumber == nil {
		t.InvoiceNumber = &invoiceNumber
	}
	if t.ReceiptNumber == nil {
		t.ReceiptNumber = &receiptNumber
	}
	if t.PaidAt == nil {
		t.PaidAt = &now
	}
}

type StatusBreakdown struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// TransactionStats aggregates the ledger over an optional creation window.
// Revenue counts completed transactions only.
type TransactionStats struct {
	TotalTransactions int                                   `json:"totalTransactions"`
	TotalAmount       float64                               `json:"totalAmount"`
	CompletedRevenue  float64                               `json:"completedRevenue"`
	TotalFees         Fees                                  `json:"totalFees"`
	ByStatus          map[TransactionStatus]StatusBreakdown `json:"byStatus"`
}
