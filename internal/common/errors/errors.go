// Package errors provides standardized error handling for the routing engine.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Fatal at startup: the engine must not start with a broken policy setup.
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	// Recoverable: routing proceeds under the conservative default.
	ErrCodeUnknownTaskType ErrorCode = "UNKNOWN_TASK_TYPE"

	// Recoverable: optional scorer/headroom signal unavailable, degrade to
	// static/rule-only inputs.
	ErrCodeDependencyTimeout ErrorCode = "DEPENDENCY_TIMEOUT"

	// Recoverable, non-blocking: the verdict already returned to the caller
	// is unaffected.
	ErrCodeSinkWriteFailed ErrorCode = "SINK_WRITE_FAILED"

	// Fatal per call: the decision matrix missed, which means the policy
	// table is broken. Never guess a strategy.
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	ErrCodeRedisUnavailable    ErrorCode = "REDIS_UNAVAILABLE"
	ErrCodeRecordPersistFailed ErrorCode = "RECORD_PERSIST_FAILED"
	ErrCodeIndexWriteFailed    ErrorCode = "INDEX_WRITE_FAILED"
	ErrCodeAnonymizationFailed ErrorCode = "ANONYMIZATION_FAILED"
	ErrCodeDispatchFailed      ErrorCode = "DISPATCH_FAILED"
	ErrCodeRequestInvalid      ErrorCode = "REQUEST_INVALID"
	ErrCodeCatalogInvalid      ErrorCode = "CATALOG_INVALID"
	ErrCodeAlertPublishFailed  ErrorCode = "ALERT_PUBLISH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigurationInvalidError creates a fatal startup configuration error.
func NewConfigurationInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Routing configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownTaskTypeWarning creates a non-fatal unknown task type warning.
func NewUnknownTaskTypeWarning(taskType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownTaskType,
		Message:   "Task type not present in capability catalog",
		Details:   fmt.Sprintf("taskType: %s", taskType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDependencyTimeoutError creates a recoverable optional-dependency timeout.
func NewDependencyTimeoutError(dependency string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDependencyTimeout,
		Message:   fmt.Sprintf("Optional dependency '%s' timed out", dependency),
		Details:   "degraded to static/rule-only inputs",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSinkWriteFailedError creates a non-blocking sink write error.
func NewSinkWriteFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSinkWriteFailed,
		Message:   "Routing record emission failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvariantViolationError creates a fatal per-call matrix lookup error.
func NewInvariantViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvariantViolation,
		Message:   "Decision matrix lookup returned no entry",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRedisUnavailableError creates a retryable Redis connectivity error.
func NewRedisUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRedisUnavailable,
		Message:   "Redis connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordPersistFailedError creates a retryable record persistence error.
func NewRecordPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordPersistFailed,
		Message:   "Routing record insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError creates a retryable search index write error.
func NewIndexWriteFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "Routing record indexing failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnonymizationFailedError creates a non-retryable anonymization error.
func NewAnonymizationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnonymizationFailed,
		Message:   "Content anonymization failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDispatchFailedError creates a retryable dispatcher error.
func NewDispatchFailedError(venue string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchFailed,
		Message:   fmt.Sprintf("Dispatch to '%s' failed", venue),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestInvalidError creates a non-retryable request validation error.
func NewRequestInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Routing request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError creates a fatal task catalog validation error.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Task catalog failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertPublishFailedError creates a retryable alert publish error.
func NewAlertPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertPublishFailed,
		Message:   "Sensitivity alert publish failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRedisUnavailable,
		ErrCodeRecordPersistFailed,
		ErrCodeIndexWriteFailed,
		ErrCodeSinkWriteFailed,
		ErrCodeDispatchFailed,
		ErrCodeAlertPublishFailed:
		return 3 // Retryable technical errors

	case ErrCodeDependencyTimeout:
		return 1 // A single re-probe; the fallback already covers the call

	default:
		return 0 // Configuration, validation, and invariant errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsFatal reports whether the code must abort the call (or startup) instead
// of degrading.
func IsFatal(code ErrorCode) bool {
	return code == ErrCodeConfigurationInvalid ||
		code == ErrCodeInvariantViolation ||
		code == ErrCodeCatalogInvalid
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION") || strings.Contains(codeStr, "CATALOG"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "INVARIANT"):
		return "POLICY"
	case strings.Contains(codeStr, "SINK") || strings.Contains(codeStr, "RECORD") || strings.Contains(codeStr, "INDEX"):
		return "OBSERVABILITY"
	case strings.Contains(codeStr, "REDIS"):
		return "DATABASE"
	case strings.Contains(codeStr, "DISPATCH") || strings.Contains(codeStr, "ANONYMIZATION"):
		return "DISPATCH"
	case strings.Contains(codeStr, "TIMEOUT"):
		return "DEPENDENCY"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
