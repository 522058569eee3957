// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-pump.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrNotificationSaturated is returned when the readiness counter cannot
	// record another pending notification. The value passed to a failed Send
	// is already in the buffer.
	ErrNotificationSaturated = errors.New("readiness notification saturated")
	ErrClosed                = errors.New("pump is closed")
	ErrReceiverConsumed      = errors.New("receiver consumed by stream")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrResourceExhausted     = errors.New("resource exhausted")
	ErrNotSupported          = errors.New("operation not supported")
	ErrNotFound              = errors.New("resource not found")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeSaturated
	ErrCodeClosed
	ErrCodeRegistration
	ErrCodeNotSupported
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap sets the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
