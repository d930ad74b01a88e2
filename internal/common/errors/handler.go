package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Detail string    `json:"detail"`
	Code   ErrorCode `json:"code"`
}

// ErrorHandler turns errors into HTTP responses.
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

// HandleHTTPError normalises err, logs it and writes the JSON error body.
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	status := GetHTTPStatus(stdErr.Code)

	h.logError(r, stdErr, status)

	if stdErr.Retryable || IsRetryableErrorCode(stdErr.Code) {
		w.Header().Set("Retry-After", "1")
	}
	WriteError(w, status, stdErr)
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// WriteError writes stdErr with the given status.
func WriteError(w http.ResponseWriter, status int, stdErr *StandardError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Detail: stdErr.Message,
		Code:   stdErr.Code,
	})
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields)
		return
	}
	h.logger.Warn("Request rejected", fields)
}
