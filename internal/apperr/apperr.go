// Package apperr defines the error kinds every operation of the core
// returns. Repository and service code tag failures with a kind; the
// API layer maps kinds to HTTP statuses. Nothing here is fatal to the
// process; every error is scoped to one request.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Kind string

const (
	Unauthenticated Kind = "unauthenticated"
	NotFound        Kind = "not_found"
	AlreadyExists   Kind = "already_exists"
	InvalidState    Kind = "invalid_state"
	Conflict        Kind = "conflict"
	ValidationError Kind = "validation_error"
	Unavailable     Kind = "unavailable"
	Internal        Kind = "internal"
)

// Error carries a kind alongside the message and optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a kinded error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and context message.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromDB maps datastore errors onto the taxonomy. Requires the gorm
// connection to be opened with TranslateError so driver-specific
// unique-constraint failures surface as gorm.ErrDuplicatedKey.
func FromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(NotFound, err, "%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(AlreadyExists, err, "%s already exists", what)
	default:
		return Wrap(Unavailable, err, "%s: datastore error", what)
	}
}
