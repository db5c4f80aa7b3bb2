package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors, mapped to HTTP statuses by the transport.
	ErrorInternal     = errors.New("internal error")
	ErrorBadRequest   = errors.New("bad request")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// Error is an error with a message that is safe to show to the client.
// Kind is one of the sentinels above and is reachable through errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(msg string) *Error      { return &Error{Kind: ErrorBadRequest, Message: msg} }
func Unauthenticated(msg string) *Error { return &Error{Kind: ErrorUnauthorized, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: ErrorForbidden, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: ErrorNotFound, Message: msg} }

// DuplicateKeyError reports a unique constraint violation on Field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrorAlreadyExists }
