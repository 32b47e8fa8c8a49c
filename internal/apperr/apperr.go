// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	stderrors "errors"
	"net/http"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Kind int

const (
	Unknown Kind = iota
	Unauthenticated
	Unauthorized
	NotFound
	Validation
	Conflict
	UploadTimeout
	Transport
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case UploadTimeout:
		return "upload_timeout"
	case Transport:
		return "transport"
	}
	return "unknown"
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case UploadTimeout:
		return http.StatusGatewayTimeout
	case Transport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error carries a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, msg string) error {
	return errors.WithStack(&Error{Kind: kind, Message: msg})
}

// Wrap attaches a kind and message to err. A nil err yields nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Kind: kind, Message: msg, cause: err})
}

// Invalid builds a Validation error with per-field messages.
func Invalid(msg string, fields map[string]string) error {
	return errors.WithStack(&Error{Kind: Validation, Message: msg, Fields: fields})
}

// As extracts the *Error from a chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err. gorm's not-found maps to NotFound.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if e, ok := As(err); ok {
		return e.Message
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "Not found."
	}
	return "Something went wrong. Please try again."
}
