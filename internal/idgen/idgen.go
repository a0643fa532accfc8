package idgen

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	apperrors "courier/internal/errors"
)

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// OrderNumber renders ORD-YYYYMMDD-XXXXXX.
func OrderNumber(now time.Time) string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))])
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), b.String())
}

// InvoiceNumber renders INV-YYYYMM-NNNN.
func InvoiceNumber(now time.Time) string {
	return monthlyNumber("INV", now)
}

// ReceiptNumber renders RCP-YYYYMM-NNNN.
func ReceiptNumber(now time.Time) string {
	return monthlyNumber("RCP", now)
}

func monthlyNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.UTC().Format("200601"), rand.Intn(10000))
}

// ExistsFunc reports whether a candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique draws candidates from next until one is free. Running out of
// attempts is an internal error; the caller must not retry silently.
func Unique(ctx context.Context, kind string, maxAttempts int, next func() string, exists ExistsFunc) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := next()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking %s uniqueness: %w", kind, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", apperrors.NewInternalError(
		fmt.Sprintf("could not generate a unique %s after %d attempts", kind, maxAttempts), nil)
}
