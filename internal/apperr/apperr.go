// Package apperr defines the error taxonomy shared by services, repositories
// and the HTTP layer. Every error carries a Kind (how the caller should react)
// and a stable machine-readable Code.
package apperr

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Kind classifies an error by how a caller is expected to recover from it.
type Kind string

const (
	// KindValidation means the caller sent malformed or incomplete input.
	KindValidation Kind = "validation"
	// KindNotFound means the addressed record does not exist.
	KindNotFound Kind = "not_found"
	// KindConflict means the request clashes with existing state.
	KindConflict Kind = "conflict"
	// KindUnauthorized means the supplied credentials were rejected.
	KindUnauthorized Kind = "unauthorized"
	// KindPersistence means the store failed; the caller may retry.
	KindPersistence Kind = "persistence"
)

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// NotFound returns a KindNotFound error.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Conflict returns a KindConflict error.
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

// Persistence wraps a store failure. op names the failed operation.
func Persistence(op string, err error) *Error {
	return &Error{
		Kind:    KindPersistence,
		Code:    "persistence_failure",
		Message: op,
		Err:     errors.Wrap(err, op),
	}
}

// KindOf reports the Kind of err, or KindPersistence for errors outside the
// taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// CodeOf reports the machine-readable code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
