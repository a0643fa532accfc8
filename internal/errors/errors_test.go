package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading buyer: %w", NewNotFoundError("buyer not found"))

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "buyer not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "latitude", Message: "latitude must be between -90 and 90"},
		{Field: "buyerId", Message: "buyerId is required"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, err, ve)
}

func TestInvalidStateError_Transition(t *testing.T) {
	err := NewTransitionError("order", "completed", "pending")

	ise, ok := IsInvalidStateError(err)
	assert.True(t, ok)
	assert.Equal(t, "completed", ise.Current)
	assert.Equal(t, "pending", ise.Target)
	assert.Contains(t, err.Error(), `"completed"`)
	assert.Contains(t, err.Error(), `"pending"`)
}

func TestConflictError_IsConflictError(t *testing.T) {
	_, ok := IsConflictError(NewConflictError("stale write"))
	assert.True(t, ok)

	_, ok = IsConflictError(NewNotFoundError("missing"))
	assert.False(t, ok)
}

func TestDeadlockError_IsDeadlockError(t *testing.T) {
	_, ok := IsDeadlockError(NewDeadlockError("max retries exceeded"))
	assert.True(t, ok)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestIsInternalError_Wrapped(t *testing.T) {
	err := fmt.Errorf("creating order: %w", NewInternalError("number space exhausted", nil))

	ie, ok := IsInternalError(err)
	assert.True(t, ok)
	assert.Equal(t, "number space exhausted", ie.Message)

	_, ok = IsInternalError(NewConflictError("x"))
	assert.False(t, ok)
}
