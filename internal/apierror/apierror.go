// Package apierror provides the typed errors the API renders to clients.
// Services return these; the ErrorHandler middleware turns the last one into the
// standard response envelope. Anything that is not an *Error is treated as internal
// and never shown to the client.
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an error by what the caller did wrong.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Status maps the kind to its HTTP status. Conflicts are reported as 400.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a client-facing failure.
type Error struct {
	Kind    Kind
	Message string
	// Fields carries per-field validation tags, if any.
	Fields map[string]string
}

func (e *Error) Error() string { return e.Message }

func newError(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Validation(msg string) *Error      { return newError(KindValidation, msg) }
func NotFound(msg string) *Error        { return newError(KindNotFound, msg) }
func Unauthenticated(msg string) *Error { return newError(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return newError(KindForbidden, msg) }
func Conflict(msg string) *Error        { return newError(KindConflict, msg) }

// NewValidation wraps multiple field errors.
func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
