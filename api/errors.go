// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types for the nanoloop runtime. Only conditions that
// are detectable synchronously surface as errors; scheduling races
// (stale wakes, clock read races) are resolved internally and never
// reach callers.

package api

import "fmt"

// Common errors used across the runtime. The structured errors the
// arena and executor return unwrap to these, so callers match with
// errors.Is without caring about the attached context.
var (
	ErrCapacityExceeded = fmt.Errorf("task arena capacity exceeded")
	ErrAlreadyRunning   = fmt.Errorf("executor is already running")
	ErrStaleHandle      = fmt.Errorf("stale task handle")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
)

// ErrorCode represents specific error conditions in the runtime.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeCapacityExceeded
	ErrCodeAlreadyRunning
	ErrCodeStaleHandle
	ErrCodeInvalidArgument
)

// sentinel maps a code to the sentinel error it unwraps to.
func (c ErrorCode) sentinel() error {
	switch c {
	case ErrCodeCapacityExceeded:
		return ErrCapacityExceeded
	case ErrCodeAlreadyRunning:
		return ErrAlreadyRunning
	case ErrCodeStaleHandle:
		return ErrStaleHandle
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}

// Error is a structured error carrying a code and the scheduling
// context it arose in (slot, generation, capacity).
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap ties the structured error to its code's sentinel, so
// errors.Is sees through the attached context.
func (e *Error) Unwrap() error {
	return e.Code.sentinel()
}

// NewError creates a structured error. Context is allocated lazily by
// WithContext; error paths that attach none stay allocation-light.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithContext attaches a named diagnostic value to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
