package respond

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "courier/internal/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every response body.
type Envelope struct {
	Status  string                       `json:"status"`
	Data    interface{}                  `json:"data,omitempty"`
	Message string                       `json:"message,omitempty"`
	TraceID string                       `json:"traceId,omitempty"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

func NewTraceID() string {
	return uuid.New().String()
}

func JSON(w http.ResponseWriter, r *http.Request, statusCode int, traceID string, data interface{}) {
	render.Status(r, statusCode)
	render.JSON(w, r, Envelope{Status: StatusSuccess, Data: data, TraceID: traceID})
}

func Message(w http.ResponseWriter, r *http.Request, statusCode int, traceID, message string) {
	status := StatusSuccess
	if statusCode >= http.StatusBadRequest {
		status = StatusError
	}
	render.Status(r, statusCode)
	render.JSON(w, r, Envelope{Status: status, Message: message, TraceID: traceID})
}

func ValidationError(w http.ResponseWriter, r *http.Request, traceID, message string, details ...apperrors.ValidationDetail) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Envelope{Status: StatusError, Message: message, TraceID: traceID, Details: details})
}

// DecodeJSON reads the request body into v, answering 400 itself when the
// body is not valid JSON.
func DecodeJSON(w http.ResponseWriter, r *http.Request, traceID string, v interface{}, logger *zap.Logger) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		ValidationError(w, r, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be empty.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, traceID string, v interface{}, logger *zap.Logger) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	err := render.DecodeJSON(r.Body, v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	logger.Warn("invalid JSON body", zap.Error(err))
	ValidationError(w, r, traceID, "invalid JSON body", apperrors.ValidationDetail{
		Field:   "body",
		Message: "request body must be valid JSON",
	})
	return false
}

// Error maps a service error onto a status code. Unexpected errors are logged
// and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		ValidationError(w, r, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsInvalidStateError(err); ok {
		Message(w, r, http.StatusBadRequest, traceID, err.Error())
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		Message(w, r, http.StatusNotFound, traceID, err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		Message(w, r, http.StatusConflict, traceID, err.Error())
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		Message(w, r, http.StatusConflict, traceID, "the request conflicted with concurrent updates, please retry")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	Message(w, r, http.StatusInternalServerError, traceID, "an unexpected error occurred")
}
