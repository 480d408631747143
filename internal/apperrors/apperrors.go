// Package apperrors provides the unified error type for the service.
// It implements structured errors with machine-readable codes and HTTP
// status mapping; only a subset of codes is ever surfaced to callers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// User-visible codes.
const (
	// CodeInvalidInput indicates a malformed SKU or request.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	// CodeUnauthorized indicates a missing API key.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// CodeForbidden indicates an unknown API key.
	CodeForbidden ErrorCode = "FORBIDDEN"
	// CodeRateLimited indicates the caller exceeded its request window.
	CodeRateLimited ErrorCode = "RATE_LIMITED"
	// CodeInternal indicates an unexpected internal failure.
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Per-vendor codes. These are absorbed by the orchestrator and logged;
// they never appear in an HTTP response body.
const (
	// CodeVendorUnavailable indicates a transport failure or timeout.
	CodeVendorUnavailable ErrorCode = "VENDOR_UNAVAILABLE"
	// CodeInvalidVendorData indicates a response that failed schema or
	// price validation.
	CodeInvalidVendorData ErrorCode = "INVALID_VENDOR_DATA"
	// CodeCircuitOpen indicates the vendor's circuit breaker rejected the
	// call without an outbound attempt.
	CodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
)

// AppError is the unified application error type.
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New creates an AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// InvalidInput creates a 400 error for a rejected request.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// Unauthorized creates a 401 error for a missing API key.
func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden creates a 403 error for an unknown API key.
func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

// RateLimited creates a 429 error for a caller over its window.
func RateLimited(limit int, windowSeconds int) *AppError {
	return New(CodeRateLimited,
		fmt.Sprintf("Maximum %d requests per %d seconds", limit, windowSeconds),
		http.StatusTooManyRequests)
}

// Internal creates a generic 500 error. The cause is kept for logging and
// never serialized.
func Internal(cause error) *AppError {
	return New(CodeInternal, "An unexpected error occurred", http.StatusInternalServerError).WithCause(cause)
}

// ErrorResponse is the JSON structure returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error details sent to clients.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ToResponse converts an AppError to its client-facing envelope.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: e.Code, Message: e.Message}}
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
