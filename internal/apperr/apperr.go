// Package apperr defines the error taxonomy shared by all public operations.
//
// Every failure that crosses a service boundary is one of the kinds below,
// carrying a human-readable message for the caller to surface. Handlers branch
// on kind; nothing in this package is fatal to the process.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	// KindUnauthenticated means no valid caller identity was presented.
	KindUnauthenticated Kind = "unauthenticated"
	// KindForbidden means the caller is not allowed to perform the mutation.
	KindForbidden Kind = "forbidden"
	// KindNotFound means the referenced record does not exist.
	KindNotFound Kind = "not_found"
	// KindTransientStore means the store or transport was unreachable or
	// returned malformed data. Safe to retry.
	KindTransientStore Kind = "transient_store"
	// KindInvalidInput means the request carried empty or malformed fields.
	KindInvalidInput Kind = "invalid_input"
)

// Error is a kinded error with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a kinded error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns a kinded error wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Unauthenticated returns an unauthenticated error.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Forbidden returns a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound returns a not-found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// TransientStore wraps a store or transport failure.
func TransientStore(message string, err error) *Error {
	return Wrap(KindTransientStore, message, err)
}

// InvalidInput returns an invalid-input error.
func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

// KindOf returns the kind of err, or KindTransientStore for errors that did
// not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransientStore
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

// UserMessage returns the caller-facing message for err, falling back to a
// generic message for foreign errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "temporary failure, please retry"
}
