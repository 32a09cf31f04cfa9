// Package domainerrors provides coded errors that carry a stable,
// user-safe message across service boundaries. Handlers translate the
// code into an HTTP status; internal details stay in logs.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure for transport mapping.
type Code string

const (
	// CodeValidation marks malformed, missing or out-of-range input.
	CodeValidation Code = "validation"
	// CodeUnauthorized marks a missing or invalid credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks an entity that is absent or not owned by the caller.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness violation.
	CodeConflict Code = "conflict"
	// CodeInvalidState marks an operation not permitted by entity state.
	CodeInvalidState Code = "invalid_state"
	// CodeInternal marks an unexpected store or runtime failure.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Message is safe to return to callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted caller-facing message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The cause is
// preserved for logging and errors.Is chains but never shown to callers.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal when err is not
// a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message for err. Non-domain errors map
// to a generic internal message so store text never leaks.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}
