// Package errors provides structured error types for treeseq.
//
// Errors carry a machine-readable [Code] so the CLI and callers can tell an
// invalid argument from a failing cache backend without string matching:
//
//	err := errors.New(errors.ErrCodeInvalidInput, "label count must be >= 1, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	// Wrap an underlying failure
//	err := errors.Wrap(errors.ErrCodeCache, cause, "read trees %d:%d", size, n)
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures
//   - NOT_FOUND: missing resources (checkpoints, cache entries)
//   - CACHE_ERROR: storage backend failures
//   - POOL_* / WORKER_*: task dispatcher failures
//   - INTERNAL_*: unexpected internal errors
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code. A Code is itself an error,
// so the standard errors.Is also matches it against an [*Error].
type Code string

func (c Code) Error() string { return string(c) }

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeCache    Code = "CACHE_ERROR"

	// Task dispatcher errors
	ErrCodePoolClosed    Code = "POOL_CLOSED"
	ErrCodeWorkerFailure Code = "WORKER_FAILURE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches a bare [Code] target.
func (e *Error) Is(target error) bool {
	code, ok := target.(Code)
	return ok && code == e.Code
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ExitCode maps err onto a process exit status: 0 for nil, 2 for invalid
// input or configuration, 1 for everything else.
func ExitCode(err error) int {
	switch GetCode(err) {
	case "":
		if err == nil {
			return 0
		}
		return 1
	case ErrCodeInvalidInput, ErrCodeInvalidConfig:
		return 2
	default:
		return 1
	}
}

// WorkerFailure describes a task whose evaluation panicked inside a worker.
// The task's result is never delivered; this value is only reported.
type WorkerFailure struct {
	TaskID uint64
	Worker int
	Panic  any
}

// Error implements the error interface.
func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("worker %d failed on task %d: %v", e.Worker, e.TaskID, e.Panic)
}

// Code returns the error code for this error type.
func (e *WorkerFailure) Code() Code {
	return ErrCodeWorkerFailure
}

// Is matches ErrCodeWorkerFailure.
func (e *WorkerFailure) Is(target error) bool {
	return target == ErrCodeWorkerFailure
}
