// Package apperror defines the error kinds the application distinguishes.
// Services return these; HTTP handlers map them to status codes with
// errors.Is, so wrapping must always preserve the sentinel.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrForbidden        = errors.New("forbidden")
	ErrStore            = errors.New("store failure")
)

type AppError struct {
	Err     error  // sentinel (possibly wrapping an underlying cause)
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidOperation marks a request that is well-formed but not allowed by the
// domain rules (e.g. a user following themselves). Distinct from the
// idempotent no-op cases, which do not error at all.
func InvalidOperation(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidOperation,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// StoreFailed wraps an underlying store error. The cause stays on the chain
// so callers can still inspect it; retrying is the store's concern, not ours.
func StoreFailed(op string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrStore, err),
		Message: fmt.Sprintf("store failure during %s", op),
	}
}
