package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers that need to react to it (HTTP status, retry, logging).
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation error"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence error"
	default:
		return "unknown error"
	}
}

// Error wraps errors with the operation that failed and a message safe to show to users.
type Error struct {
	// Kind is the error category.
	Kind Kind

	// Op is the operation that failed (e.g. "recurring.create").
	Op string

	// Msg is the user-facing message.
	Msg string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, msg string, err error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func Unauthorized(op, msg string) error {
	return newError(KindUnauthorized, op, msg, nil)
}

func Forbidden(op, msg string) error {
	return newError(KindForbidden, op, msg, nil)
}

func Validation(op, msg string) error {
	return newError(KindValidation, op, msg, nil)
}

func NotFound(op, msg string) error {
	return newError(KindNotFound, op, msg, nil)
}

func Conflict(op, msg string) error {
	return newError(KindConflict, op, msg, nil)
}

// Persistence reports a rejected read or write. The store error is kept for logs but is
// not part of PublicMessage.
func Persistence(op, msg string, err error) error {
	return newError(KindPersistence, op, msg, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the text to render to an end user.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Kind == KindPersistence {
		if e.Msg != "" {
			return e.Msg
		}
		return e.Kind.String()
	}
	return e.Error()
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
