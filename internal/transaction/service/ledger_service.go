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
	"courier/internal/idgen"
	"courier/internal/infrastructure/mysql"
)

type TransactionRepository interface {
	Insert(ctx context.Context, t *domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	ExistsDocumentNumber(ctx context.Context, number string) (bool, error)
	SaveStatus(ctx context.Context, t *domain.Transaction, expected domain.TransactionStatus, mirror *domain.PaymentStatus) error
	Stats(ctx context.Context, from, to *time.Time) (*domain.TransactionStats, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

type BuyerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Buyer, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, eventType, aggregateID string, payload interface{})
}

type Options struct {
	DefaultCurrency   string
	NumberMaxAttempts int
	WriteMaxAttempts  int
}

type LedgerService struct {
	transactions TransactionRepository
	orders       OrderRepository
	buyers       BuyerRepository
	events       EventEmitter
	opts         Options
	logger       *zap.Logger
	now          func() time.Time
}

func NewLedgerService(
	transactions TransactionRepository,
	orders OrderRepository,
	buyers BuyerRepository,
	emitter EventEmitter,
	opts Options,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		transactions: transactions,
		orders:       orders,
		buyers:       buyers,
		events:       emitter,
		opts:         opts,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// FeesInput carries optional fee components. Missing components count as 0
// and a missing total is their sum.
type FeesInput struct {
	DeliveryFee *float64
	ServiceFee  *float64
	PlatformFee *float64
	Total       *float64
}

type CreateTransactionInput struct {
	OrderID       string
	BuyerID       string
	PaymentMethod string
	Amount        float64
	Currency      string
	Fees          *FeesInput
	Reference     string
	ProofURL      string
	Notes         string
}

// CreateTransaction records a pending payment and moves the order's payment
// status to processing in the same write.
func (s *LedgerService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*domain.Transaction, error) {
	if err := validateCreateTransaction(in); err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	buyer, err := s.buyers.FindByID(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}

	fees := domain.Fees{}
	if in.Fees != nil {
		fees = domain.NewFees(in.Fees.DeliveryFee, in.Fees.ServiceFee, in.Fees.PlatformFee, in.Fees.Total)
	}

	currency := in.Currency
	if currency == "" {
		currency = order.Pricing.Currency
	}
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	t := domain.NewTransaction(uuid.New().String(), order.ID, buyer.ID, in.PaymentMethod, in.Amount, currency, fees, s.now())
	t.PaymentDetails = domain.PaymentDetails{Reference: in.Reference, ProofURL: in.ProofURL, Notes: in.Notes}

	err = mysql.RetryOnDeadlock(ctx, s.opts.WriteMaxAttempts, s.logger, func(ctx context.Context) error {
		return s.transactions.Insert(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.String("transactionId", t.ID),
		zap.String("orderId", order.ID),
		zap.Float64("amount", t.Amount),
		zap.String("currency", t.Currency),
	)

	return t, nil
}

func validateCreateTransaction(in CreateTransactionInput) error {
	var details []apperrors.ValidationDetail

	if in.OrderID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "orderId", Message: "orderId is required"})
	}
	if in.BuyerID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "buyerId", Message: "buyerId is required"})
	}
	if in.PaymentMethod == "" {
		details = append(details, apperrors.ValidationDetail{Field: "paymentMethod", Message: "paymentMethod is required"})
	}
	if in.Amount <= 0 {
		details = append(details, apperrors.ValidationDetail{Field: "amount", Message: "amount must be greater than 0"})
	}

	if in.Fees != nil {
		components := []struct {
			field string
			value *float64
		}{
			{"fees.deliveryFee", in.Fees.DeliveryFee},
			{"fees.serviceFee", in.Fees.ServiceFee},
			{"fees.platformFee", in.Fees.PlatformFee},
			{"fees.total", in.Fees.Total},
		}
		for _, c := range components {
			if c.value != nil && *c.value < 0 {
				details = append(details, apperrors.ValidationDetail{Field: c.field, Message: "fees must be non-negative"})
			}
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.transactions.FindByID(ctx, id)
}

type statusChange struct {
	OrderID string                   `json:"orderId"`
	From    domain.TransactionStatus `json:"from"`
	To      domain.TransactionStatus `json:"to"`
}

// UpdateStatus moves a transaction through its lifecycle. The first move
// into completed issues the invoice and receipt numbers and the paid date;
// repeating it changes none of them.
func (s *LedgerService) UpdateStatus(ctx context.Context, id, status, proofURL, notes string) (*domain.Transaction, error) {
	next, ok := domain.ParseTransactionStatus(status)
	if !ok {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("invalid transaction status %q", status))
	}

	var (
		saved    *domain.Transaction
		previous domain.TransactionStatus
	)

	err := mysql.RetryOnDeadlock(ctx, s.opts.WriteMaxAttempts, s.logger, func(ctx context.Context) error {
		t, err := s.transactions.FindByID(ctx, id)
		if err != nil {
			return err
		}

		expected := t.Status
		now := s.now()
		if err := t.Transition(next, now); err != nil {
			return err
		}
		if proofURL != "" {
			t.PaymentDetails.ProofURL = proofURL
		}
		if notes != "" {
			t.PaymentDetails.Notes = notes
		}

		if t.NeedsDocumentNumbers() {
			if err := s.issueDocumentNumbers(ctx, t, now); err != nil {
				return err
			}
		}

		var mirror *domain.PaymentStatus
		if ps, ok := next.PaymentStatus(); ok {
			mirror = &ps
		}

		if err := s.transactions.SaveStatus(ctx, t, expected, mirror); err != nil {
			return err
		}

		saved, previous = t, expected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction status updated",
		zap.String("transactionId", saved.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(saved.Status)),
	)
	if previous != saved.Status {
		s.events.Emit(ctx, events.TypeTransactionStatusChanged, saved.ID, statusChange{
			OrderID: saved.OrderID,
			From:    previous,
			To:      saved.Status,
		})
	}

	return saved, nil
}

func (s *LedgerService) issueDocumentNumbers(ctx context.Context, t *domain.Transaction, now time.Time) error {
	invoice, err := idgen.Unique(ctx, "invoice number", s.opts.NumberMaxAttempts,
		func() string { return idgen.InvoiceNumber(now) }, s.transactions.ExistsDocumentNumber)
	if err != nil {
		return err
	}

	receipt, err := idgen.Unique(ctx, "receipt number", s.opts.NumberMaxAttempts,
		func() string { return idgen.ReceiptNumber(now) }, s.transactions.ExistsDocumentNumber)
	if err != nil {
		return err
	}

	t.IssueDocumentNumbers(invoice, receipt, now)
	return nil
}
