package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "courier/internal/errors"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestNewFees_DefaultsToZero(t *testing.T) {
	fees := NewFees(nil, nil, nil, nil)

	assert.Equal(t, Fees{}, fees)
}

func TestNewFees_DerivesTotal(t *testing.T) {
	fees := NewFees(floatPtr(100), nil, floatPtr(15), nil)

	assert.Equal(t, 100.0, fees.DeliveryFee)
	assert.Equal(t, 0.0, fees.ServiceFee)
	assert.Equal(t, 115.0, fees.Total)
}

func TestNewFees_KeepsExplicitTotal(t *testing.T) {
	fees := NewFees(floatPtr(100), floatPtr(10), floatPtr(5), floatPtr(120))

	assert.Equal(t, 120.0, fees.Total)
}

func TestNewTransaction_StartsPending(t *testing.T) {
	tx := NewTransaction("tx-1", "order-1", "buyer-1", "telebirr", 1000, "ETB", Fees{}, time.Now())

	assert.Equal(t, TransactionStatusPending, tx.Status)
	assert.Equal(t, TransactionTypePayment, tx.Type)
	assert.Nil(t, tx.InvoiceNumber)
	assert.Nil(t, tx.ReceiptNumber)
	assert.Nil(t, tx.PaidAt)
}

func TestTransaction_Transition(t *testing.T) {
	tx := NewTransaction("tx-1", "order-1", "buyer-1", "cash", 100, "ETB", Fees{}, time.Now())

	require.NoError(t, tx.Transition(TransactionStatusProcessing, time.Now()))
	require.NoError(t, tx.Transition(TransactionStatusCompleted, time.Now()))
	require.NoError(t, tx.Transition(TransactionStatusCompleted, time.Now()))
	require.NoError(t, tx.Transition(TransactionStatusRefunded, time.Now()))

	err := tx.Transition(TransactionStatusPending, time.Now())
	_, ok := apperrors.IsInvalidStateError(err)
	assert.True(t, ok)
	assert.Equal(t, TransactionStatusRefunded, tx.Status)
}

func TestParseTransactionStatus(t *testing.T) {
	_, ok := ParseTransactionStatus("completed")
	assert.True(t, ok)

	_, ok = ParseTransactionStatus("paid")
	assert.False(t, ok)
}

func TestTransaction_IssueDocumentNumbers_OnlyOnce(t *testing.T) {
	tx := NewTransaction("tx-1", "order-1", "buyer-1", "cash", 100, "ETB", Fees{}, time.Now())
	require.NoError(t, tx.Transition(TransactionStatusCompleted, time.Now()))
	assert.True(t, tx.NeedsDocumentNumbers())

	first := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	tx.IssueDocumentNumbers("INV-202605-1234", "RCP-202605-5678", first)
	assert.False(t, tx.NeedsDocumentNumbers())

	tx.IssueDocumentNumbers("INV-202606-0000", "RCP-202606-0000", first.Add(24*time.Hour))

	assert.Equal(t, "INV-202605-1234", *tx.InvoiceNumber)
	assert.Equal(t, "RCP-202605-5678", *tx.ReceiptNumber)
	assert.Equal(t, first, *tx.PaidAt)
}

func TestTransactionStatus_PaymentStatus(t *testing.T) {
	cases := map[TransactionStatus]PaymentStatus{
		TransactionStatusCompleted: PaymentStatusPaid,
		TransactionStatusFailed:    PaymentStatusFailed,
		TransactionStatusRefunded:  PaymentStatusRefunded,
	}
	for status, want := range cases {
		got, ok := status.PaymentStatus()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := TransactionStatusProcessing.PaymentStatus()
	assert.False(t, ok)
}
