package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"courier/internal/domain"
	"courier/internal/errors"
	"courier/internal/infrastructure/mysql"
)

const transactionColumns = `
	id, orderId, buyerId, transactionType, paymentMethod, amount, currency,
	deliveryFee, serviceFee, platformFee, feesTotal, status,
	paymentReference, paymentProof, notes, invoiceNumber, receiptNumber, paidAt, createdAt, updatedAt`

type MySQLTransactionRepository struct {
	db *sql.DB
}

func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db}
}

// Insert stores a new transaction and, in the same SQL transaction, marks the
// owning order as processing payment and mirrors the amount and fees into its
// pricing. Either both writes land or neither does.
func (r *MySQLTransactionRepository) Insert(ctx context.Context, t *domain.Transaction) error {
	insert := `INSERT INTO Transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	mirror := `
		UPDATE Orders
		SET paymentStatus = ?, transactionId = ?, totalAmount = ?,
		    deliveryFee = ?, serviceFee = ?, platformFee = ?, updatedAt = ?
		WHERE id = ?
	`

	return mysql.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insert,
			t.ID, t.OrderID, t.BuyerID, t.Type, t.PaymentMethod, t.Amount, t.Currency,
			t.Fees.DeliveryFee, t.Fees.ServiceFee, t.Fees.PlatformFee, t.Fees.Total, t.Status,
			t.PaymentDetails.Reference, t.PaymentDetails.ProofURL, t.PaymentDetails.Notes,
			t.InvoiceNumber, t.ReceiptNumber, t.PaidAt, t.CreatedAt, t.UpdatedAt,
		)
		if mysql.IsDuplicateKey(err) {
			return errors.NewConflictError(fmt.Sprintf("transaction %s already exists", t.ID))
		}
		if err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}

		result, err := tx.ExecContext(ctx, mirror,
			domain.PaymentStatusProcessing, t.ID, t.Amount,
			t.Fees.DeliveryFee, t.Fees.ServiceFee, t.Fees.PlatformFee, t.UpdatedAt,
			t.OrderID,
		)
		if err != nil {
			return fmt.Errorf("updating order payment: %w", err)
		}

		return requireRow(result, fmt.Sprintf("order with id %s not found", t.OrderID))
	})
}

func (r *MySQLTransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM Transactions WHERE id = ?`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("transaction with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying transaction by id: %w", err)
	}

	return t, nil
}

// ExistsDocumentNumber reports whether number is already used as an invoice
// or receipt number.
func (r *MySQLTransactionRepository) ExistsDocumentNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM Transactions WHERE invoiceNumber = ? OR receiptNumber = ?)`
	if err := r.db.QueryRowContext(ctx, query, number, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking document number: %w", err)
	}
	return exists, nil
}

// SaveStatus persists the transaction's status, payment details and document
// numbers while the stored status still equals expected. When mirror is set
// the owning order's paymentStatus is updated in the same SQL transaction.
func (r *MySQLTransactionRepository) SaveStatus(ctx context.Context, t *domain.Transaction, expected domain.TransactionStatus, mirror *domain.PaymentStatus) error {
	update := `
		UPDATE Transactions
		SET status = ?, paymentProof = ?, notes = ?, invoiceNumber = ?, receiptNumber = ?, paidAt = ?, updatedAt = ?
		WHERE id = ? AND status = ?
	`

	return mysql.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, update,
			t.Status, t.PaymentDetails.ProofURL, t.PaymentDetails.Notes,
			t.InvoiceNumber, t.ReceiptNumber, t.PaidAt, t.UpdatedAt,
			t.ID, expected,
		)
		if mysql.IsDuplicateKey(err) {
			return errors.NewConflictError("invoice or receipt number already issued")
		}
		if err != nil {
			return fmt.Errorf("updating transaction status: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return errors.NewConflictError(fmt.Sprintf("transaction %s is no longer %s", t.ID, expected))
		}

		if mirror == nil {
			return nil
		}

		result, err = tx.ExecContext(ctx, `UPDATE Orders SET paymentStatus = ?, updatedAt = ? WHERE id = ?`,
			*mirror, t.UpdatedAt, t.OrderID)
		if err != nil {
			return fmt.Errorf("updating order payment status: %w", err)
		}

		return requireRow(result, fmt.Sprintf("order with id %s not found", t.OrderID))
	})
}

// Stats aggregates transactions created within [from, to]. Nil bounds are open.
func (r *MySQLTransactionRepository) Stats(ctx context.Context, from, to *time.Time) (*domain.TransactionStats, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if from != nil {
		conditions = append(conditions, "createdAt >= ?")
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, "createdAt <= ?")
		args = append(args, *to)
	}

	query := `
		SELECT status, COUNT(*), COALESCE(SUM(amount), 0),
		       COALESCE(SUM(deliveryFee), 0), COALESCE(SUM(serviceFee), 0),
		       COALESCE(SUM(platformFee), 0), COALESCE(SUM(feesTotal), 0)
		FROM Transactions`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transaction stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.TransactionStats{ByStatus: map[domain.TransactionStatus]domain.StatusBreakdown{}}
	for rows.Next() {
		var (
			status domain.TransactionStatus
			count  int
			amount float64
			fees   domain.Fees
		)
		if err := rows.Scan(&status, &count, &amount, &fees.DeliveryFee, &fees.ServiceFee, &fees.PlatformFee, &fees.Total); err != nil {
			return nil, fmt.Errorf("scanning transaction stats: %w", err)
		}

		stats.ByStatus[status] = domain.StatusBreakdown{Count: count, Amount: amount}
		stats.TotalTransactions += count
		stats.TotalAmount += amount
		if status == domain.TransactionStatusCompleted {
			stats.CompletedRevenue += amount
		}
		stats.TotalFees.DeliveryFee += fees.DeliveryFee
		stats.TotalFees.ServiceFee += fees.ServiceFee
		stats.TotalFees.PlatformFee += fees.PlatformFee
		stats.TotalFees.Total += fees.Total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction stats: %w", err)
	}

	return stats, nil
}

func requireRow(result sql.Result, notFound string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(notFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var (
		t     domain.Transaction
		notes sql.NullString
	)

	err := s.Scan(
		&t.ID, &t.OrderID, &t.BuyerID, &t.Type, &t.PaymentMethod, &t.Amount, &t.Currency,
		&t.Fees.DeliveryFee, &t.Fees.ServiceFee, &t.Fees.PlatformFee, &t.Fees.Total, &t.Status,
		&t.PaymentDetails.Reference, &t.PaymentDetails.ProofURL, &notes,
		&t.InvoiceNumber, &t.ReceiptNumber, &t.PaidAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.PaymentDetails.Notes = notes.String
	return &t, nil
}
