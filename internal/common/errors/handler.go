// internal/common/errors/handler.go
package errors

import (
	"errors"
	"net/http"
	"time"
)

// ErrorHandler normalizes and logs routing errors at the transport boundary.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Normalize ensures we always have a StandardError.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Handle logs the error with its category and returns the normalized form.
// Fatal codes log at error level, everything else at warn.
func (h *ErrorHandler) Handle(requestID string, err error) *StandardError {
	stdErr := h.Normalize(err)

	fields := map[string]interface{}{
		"requestId": requestID,
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"retryable": stdErr.Retryable,
		"details":   stdErr.Details,
	}

	if IsFatal(stdErr.Code) {
		h.logger.Error(stdErr.Message, fields)
	} else {
		h.logger.Warn(stdErr.Message, fields)
	}

	return stdErr
}

// HTTPStatus maps an error code to the response status for the API layer.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeRequestInvalid:
		return http.StatusBadRequest
	case ErrCodeInvariantViolation, ErrCodeConfigurationInvalid, ErrCodeCatalogInvalid:
		return http.StatusInternalServerError
	case ErrCodeRedisUnavailable, ErrCodeDispatchFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
