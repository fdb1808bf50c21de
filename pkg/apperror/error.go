package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error carrying the HTTP status and a stable error code.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// WithInternal returns a copy of the error with an internal cause attached.
// The cause is logged, never rendered.
func (e *Error) WithInternal(err error) *Error {
	cp := *e
	cp.Internal = err
	return &cp
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// WithDetails returns a copy of the error with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// New creates a new application error.
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

var (
	ErrNotFound        = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrBadRequest      = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrValidation      = New(http.StatusUnprocessableEntity, "validation_error", "Validation failed")
	ErrTooManyRequests = New(http.StatusTooManyRequests, "rate_limited", "Too many requests, please slow down")

	ErrInternal      = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrDatabase      = New(http.StatusInternalServerError, "database_error", "Database operation failed")
	ErrNotConfigured = New(http.StatusInternalServerError, "server_misconfigured", "Server configuration error")
)

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewBadRequest creates a bad request error with a custom message.
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFound creates a not found error for a resource type and ID.
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s '%s' not found", resourceType, id))
}

// NewInternal creates an internal error with a message and the wrapped cause.
func NewInternal(message string, err error) *Error {
	return ErrInternal.WithMessage(message).WithInternal(err)
}
