package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrTooLarge    = errors.New("payload too large")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrStorage     = errors.New("storage unavailable")
	ErrPersistence = errors.New("persistence error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id uint) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
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

// TooLarge returns an AppError for a payload over a size cap. HTTP handlers
// map this to 413 rather than a plain 400.
func TooLarge(field, message string) *AppError {
	return &AppError{
		Err:     ErrTooLarge,
		Message: message,
		Field:   field,
	}
}

// Storage wraps an object-storage failure. The cause stays attached for
// errors.Is/As while the client message never leaks the adapter error.
func Storage(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrStorage, err),
		Message: "media storage is unavailable",
	}
}

// Persistence wraps a database failure.
func Persistence(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrPersistence, err),
		Message: "could not persist changes",
	}
}
