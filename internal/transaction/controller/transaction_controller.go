package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/dto"
	"courier/internal/server/respond"
	"courier/internal/transaction/service"
)

type LedgerService interface {
	CreateTransaction(ctx context.Context, in service.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id, status, proofURL, notes string) (*domain.Transaction, error)
	GenerateInvoice(ctx context.Context, id string) (*service.Invoice, error)
	Stats(ctx context.Context, startDate, endDate string) (*domain.TransactionStats, error)
}

type TransactionController struct {
	ledger LedgerService
	logger *zap.Logger
}

func NewTransactionController(ledger LedgerService, logger *zap.Logger) *TransactionController {
	return &TransactionController{
		ledger: ledger,
		logger: logger,
	}
}

func (c *TransactionController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateTransactionRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	in := service.CreateTransactionInput{
		OrderID:       req.OrderID,
		BuyerID:       req.BuyerID,
		PaymentMethod: req.PaymentMethod,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Reference:     req.PaymentReference,
		ProofURL:      req.PaymentProof,
		Notes:         req.Notes,
	}
	if req.Fees != nil {
		in.Fees = &service.FeesInput{
			DeliveryFee: req.Fees.DeliveryFee,
			ServiceFee:  req.Fees.ServiceFee,
			PlatformFee: req.Fees.PlatformFee,
			Total:       req.Fees.Total,
		}
	}

	txn, err := c.ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusCreated, traceID, txn)
}

func (c *TransactionController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	txn, err := c.ledger.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, txn)
}

func (c *TransactionController) Update(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.UpdateTransactionRequest
	if !respond.DecodeJSON(w, r, traceID, &req, logger) {
		return
	}

	txn, err := c.ledger.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.PaymentProof, req.Notes)
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, txn)
}

func (c *TransactionController) Invoice(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	invoice, err := c.ledger.GenerateInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, invoice)
}

func (c *TransactionController) Stats(w http.ResponseWriter, r *http.Request) {
	traceID := respond.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))
	query := r.URL.Query()

	stats, err := c.ledger.Stats(r.Context(), query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		respond.Error(w, r, traceID, err, logger)
		return
	}

	respond.JSON(w, r, http.StatusOK, traceID, stats)
}
