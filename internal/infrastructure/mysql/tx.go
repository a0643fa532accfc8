package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	apperrors "courier/internal/errors"
)

type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn inside a transaction, committing on success.
func WithTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// MySQL ignores rollback after commit.
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

var deadlockBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

// RetryOnDeadlock calls fn until it succeeds, fails with a non-deadlock error,
// or maxAttempts deadlocks have been seen.
func RetryOnDeadlock(ctx context.Context, maxAttempts int, logger *zap.Logger, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsDeadlock(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		wait := backoff(attempt)
		logger.Warn("deadlock detected, retrying", zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Duration("backoff", wait))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

// backoff returns the base delay for the attempt with ±20% jitter.
func backoff(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(deadlockBackoffs) {
		idx = len(deadlockBackoffs) - 1
	}
	base := deadlockBackoffs[idx]
	jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(base))
	return base + jitter
}
