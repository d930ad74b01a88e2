// Package errors provides the structured errors returned by the HTTP surface
// and their mapping onto status codes.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeModelNotFound          ErrorCode = "MODEL_NOT_FOUND"
	ErrCodeModelRemoveFailed      ErrorCode = "MODEL_REMOVE_FAILED"
	ErrCodeElementNotFound        ErrorCode = "ELEMENT_NOT_FOUND"
	ErrCodeElementRetrievalFailed ErrorCode = "ELEMENT_RETRIEVAL_FAILED"

	ErrCodeEngineOpenFailed ErrorCode = "ENGINE_OPEN_FAILED"
	ErrCodeEngineBusy       ErrorCode = "ENGINE_BUSY"

	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Message is the
// client-facing detail; Details and Cause stay server side.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

func causeDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 2. Error Constructors
// ==========================

// NewModelNotFoundError creates a non-retryable missing model error.
func NewModelNotFoundError(modelID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotFound,
		Message:   "Model not found",
		Details:   fmt.Sprintf("modelId: %s", modelID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelRemoveFailedError wraps a backing file I/O failure.
func NewModelRemoveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelRemoveFailed,
		Message:   fmt.Sprintf("Error removing model: %s", causeDetails(err)),
		Details:   causeDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewElementNotFoundError creates a non-retryable missing element error.
func NewElementNotFoundError(guid string) *StandardError {
	return &StandardError{
		Code:      ErrCodeElementNotFound,
		Message:   fmt.Sprintf("Element with GUID %s not found", guid),
		Details:   fmt.Sprintf("guid: %s", guid),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewElementRetrievalFailedError wraps an unexpected failure during a query.
func NewElementRetrievalFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElementRetrievalFailed,
		Message:   fmt.Sprintf("Error retrieving element: %s", causeDetails(err)),
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewEngineOpenFailedError wraps a parse or decode failure of an upload.
func NewEngineOpenFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineOpenFailed,
		Message:   fmt.Sprintf("Error processing IFC: %s", causeDetails(err)),
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewEngineBusyError reports that no parse slot freed up in time.
func NewEngineBusyError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineBusy,
		Message:   "Server is busy processing other models, retry later",
		Details:   causeDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadTooLargeError reports an upload over the configured limit.
func NewPayloadTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadTooLarge,
		Message:   fmt.Sprintf("Upload exceeds the %d byte limit", limit),
		Details:   fmt.Sprintf("limit: %d", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError reports an upload rejected by the throttle.
func NewRateLimitedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many uploads, retry later",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything unexpected.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 3. HTTP Status Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to response status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeModelNotFound:          http.StatusNotFound,
	ErrCodeModelRemoveFailed:      http.StatusInternalServerError,
	ErrCodeElementNotFound:        http.StatusNotFound,
	ErrCodeElementRetrievalFailed: http.StatusInternalServerError,
	ErrCodeEngineOpenFailed:       http.StatusInternalServerError,
	ErrCodeEngineBusy:             http.StatusServiceUnavailable,
	ErrCodeInvalidRequest:         http.StatusUnprocessableEntity,
	ErrCodePayloadTooLarge:        http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:            http.StatusTooManyRequests,
	ErrCodeInternal:               http.StatusInternalServerError,
}

// GetHTTPStatus returns the status code for an error code, 500 when unknown.
func GetHTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if a client may retry the same request.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeEngineBusy, ErrCodeRateLimited, ErrCodeModelRemoveFailed:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "MODEL"):
		return "MODEL"
	case strings.HasPrefix(codeStr, "ELEMENT"):
		return "ELEMENT"
	case strings.HasPrefix(codeStr, "ENGINE"):
		return "ENGINE"
	case strings.Contains(codeStr, "REQUEST") || strings.Contains(codeStr, "PAYLOAD") || strings.Contains(codeStr, "RATE"):
		return "REQUEST"
	default:
		return "OTHER"
	}
}
