package service

import (
	"context"
	"time"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
)

const dateLayout = "2006-01-02"

// Stats aggregates the ledger between startDate and endDate. Either bound
// may be empty; each accepts RFC 3339 or YYYY-MM-DD, and a bare end date
// covers that whole day.
func (s *LedgerService) Stats(ctx context.Context, startDate, endDate string) (*domain.TransactionStats, error) {
	var details []apperrors.ValidationDetail

	from, ok := parseBound(startDate, false)
	if !ok {
		details = append(details, apperrors.ValidationDetail{Field: "startDate", Message: "startDate must be RFC 3339 or YYYY-MM-DD"})
	}
	to, ok := parseBound(endDate, true)
	if !ok {
		details = append(details, apperrors.ValidationDetail{Field: "endDate", Message: "endDate must be RFC 3339 or YYYY-MM-DD"})
	}
	if from != nil && to != nil && from.After(*to) {
		details = append(details, apperrors.ValidationDetail{Field: "startDate", Message: "startDate must not be after endDate"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid date range", details...)
	}

	return s.transactions.Stats(ctx, from, to)
}

func parseBound(value string, endOfDay bool) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, true
}
