package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable error classification carried on every
// user-visible failure.
type Kind string

const (
	KindInputInvalid    Kind = "INPUT_INVALID"
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindConflict        Kind = "CONFLICT"
	KindExternalFailure Kind = "EXTERNAL_FAILURE"
	KindInternal        Kind = "INTERNAL"
)

// Error is a classified application error. Code is a finer-grained label
// within the Kind (e.g. ALREADY_FUNDED within CONFLICT).
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

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to its response status class.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInputInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindExternalFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// From extracts an *Error from err, classifying anything unrecognized as
// INTERNAL so no raw error ever reaches a client.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "internal error", Err: err}
}

// Input returns an INPUT_INVALID error for a named field check.
func Input(code, message string) *Error {
	return New(KindInputInvalid, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func Forbidden(code, message string) *Error {
	return New(KindForbidden, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func External(code, message string, err error) *Error {
	return Wrap(KindExternalFailure, code, message, err)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, "INTERNAL", message, err)
}
