// Package apperror defines the error vocabulary shared by the repository,
// service and handler layers.
//
// ERROR CATEGORIES:
// Every error the API can return to a client belongs to one category, and each
// category maps to exactly one HTTP status in handler.writeError:
//
//	ErrValidation   → 400   bad client input (signup checks, bad uploads)
//	ErrUnauthorized → 401   identity or ownership mismatch
//	ErrNotFound     → 404   no row with the given identifier
//	ErrConflict     → 409   unique constraint hit
//	ErrInternal     → 500   persistence failures, surfaced with their text
//
// Lower layers return *AppError values that wrap one of these sentinels.
// Callers test the category with errors.Is and read the client-facing text
// from AppError.Message, so fmt.Errorf("...: %w", err) wrapping never loses
// either piece.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// AppError carries a category sentinel plus the message shown to clients.
type AppError struct {
	Err     error  // category sentinel
	Message string // client-facing text
	Field   string // optional: the field or column that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError of the given category with a formatted message.
func New(category error, format string, args ...any) *AppError {
	return &AppError{
		Err:     category,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound is what repositories return when no row matches id.
// The service layer replaces the message with the client-facing wording.
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

// Conflict reports a unique constraint violation on field.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: message,
	}
}

// Message returns the client-facing text of err: the AppError message when
// err wraps one, otherwise err.Error(). A nil error yields "".
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
