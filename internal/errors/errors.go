// Package errors provides the coded domain errors used across the
// notevault data layer.
//
// Services return typed errors; the presentation layer matches on them
// with errors.Is or switches on the Code:
//
//	if errors.Is(err, errors.ErrNotAuthenticated) { ... }
//
//	var derr *errors.Error
//	if errors.As(err, &derr) && derr.Code == errors.CodeStoreFailed { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code is a machine-readable error code.
type Code string

// Error codes used throughout the data layer.
const (
	// CodeNotFound means the requested entity does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeNotAuthenticated means an operation required a current user
	// id and none was available.
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"
	// CodeValidation means the supplied input failed validation.
	CodeValidation Code = "VALIDATION"
	// CodeStoreFailed means a document store round trip failed
	// (network, permission, or backend error).
	CodeStoreFailed Code = "STORE_FAILED"
	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error. Two *Error values
// match when their codes are equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a copy of the error carrying additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrNotAuthenticated = &Error{Code: CodeNotAuthenticated, Message: "not authenticated"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrStoreFailed      = &Error{Code: CodeStoreFailed, Message: "store operation failed"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NotAuthenticated creates a not authenticated error.
func NotAuthenticated(msg string) *Error {
	return &Error{Code: CodeNotAuthenticated, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// StoreFailed wraps a store round-trip failure.
func StoreFailed(err error, msg string) *Error {
	return &Error{Code: CodeStoreFailed, Message: msg, cause: err}
}

// StoreFailedf wraps a store round-trip failure with a formatted message.
func StoreFailedf(err error, format string, args ...any) *Error {
	return &Error{Code: CodeStoreFailed, Message: fmt.Sprintf(format, args...), cause: err}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
