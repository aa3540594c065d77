// Package apierror provides standardized API error responses shared by all
// HTTP handlers.
package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

// Standard error codes.
const (
	CodeBadRequest        Code = "BAD_REQUEST"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeValidationFailed  Code = "VALIDATION_FAILED"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError     Code = "INTERNAL_ERROR"
)

// Error is a standardized API error.
type Error struct {
	Status  int    `json:"-"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// WithErr attaches an internal cause, not exposed to clients.
func (e *Error) WithErr(err error) *Error {
	e.Err = err
	return e
}

// WriteJSON writes the error as a JSON response.
func (e *Error) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(struct {
		Error   Code   `json:"error"`
		Message string `json:"message"`
		Details any    `json:"details,omitempty"`
	}{e.Code, e.Message, e.Details})
}

// ValidationError carries one field violation in a VALIDATION_FAILED response.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Constructors.

// New creates an API error.
func New(status int, code Code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, message)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

// NotFound creates a 404 error for a resource.
func NotFound(resource string) *Error {
	return New(http.StatusNotFound, CodeNotFound, resource+" not found")
}

// Conflict creates a 409 error.
func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeConflict, message)
}

// ValidationFailed creates a 422 error with per-field details.
func ValidationFailed(message string, details []ValidationError) *Error {
	e := New(http.StatusUnprocessableEntity, CodeValidationFailed, message)
	e.Details = details
	return e
}

// RateLimited creates a 429 error.
func RateLimited(message string) *Error {
	return New(http.StatusTooManyRequests, CodeRateLimitExceeded, message)
}

// Internal creates a 500 error wrapping an internal cause.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternalError, "internal server error").WithErr(err)
}

// FromError maps an arbitrary error to an API error, preserving an existing
// *Error.
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}
