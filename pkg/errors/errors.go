// Package errors provides structured error types for capmap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the layout engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The layout core raises exactly three codes, all non-recoverable at the point
// of origin:
//   - MALFORMED_HIERARCHY: no unique root, dangling child, duplicate child, cycle
//   - UNKNOWN_NODE: query on an identifier absent from the hierarchy
//   - DEPTH_EXCEEDED: level search ran past the configured bound
//
// Render sinks fail with RENDER_FAILED, which always carries the sink's own
// error as its unmodified cause.
//
// # Usage
//
//	err := errors.UnknownNode("billing")
//	if errors.Is(err, errors.ErrCodeUnknownNode) {
//	    // Handle lookup failure
//	}
//
//	// Wrap a sink error
//	err := errors.RenderFailed(origErr, "save %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout core errors
	ErrCodeMalformedHierarchy Code = "MALFORMED_HIERARCHY"
	ErrCodeUnknownNode        Code = "UNKNOWN_NODE"
	ErrCodeDepthExceeded      Code = "DEPTH_EXCEEDED"

	// Render sink errors
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// MalformedHierarchy reports a violated structural invariant.
func MalformedHierarchy(format string, args ...any) *Error {
	return New(ErrCodeMalformedHierarchy, format, args...)
}

// UnknownNode reports a lookup on an identifier that is not a hierarchy key.
func UnknownNode(id string) *Error {
	return New(ErrCodeUnknownNode, "unknown node %q", id)
}

// DepthExceeded reports a level search that passed its bound without finding id.
func DepthExceeded(id string, bound int) *Error {
	return New(ErrCodeDepthExceeded, "node %q not found within %d levels", id, bound)
}

// RenderFailed wraps a sink error. The cause is kept exactly as the sink returned it.
func RenderFailed(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeRenderFailed, cause, format, args...)
}
