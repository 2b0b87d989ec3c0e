// Package errors provides structured error types for roomgraph's outer
// layers (CLI and HTTP API).
//
// The core graph package reports failures with sentinel errors and
// *roomgraph.DenialError. Layers that talk to users translate those into an
// [Error] carrying a machine-readable [Code], so the CLI can print a
// friendly message and the HTTP server can pick a status code.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: malformed input (names, types, documents)
//   - *_NOT_FOUND: a graph or node does not exist
//   - CONNECTION_DENIED, ENTRANCE_*: requests refused by graph rules
//   - STORAGE_*, INTERNAL_*: backend and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidName, "invalid graph name: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidName) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidName  Code = "INVALID_NAME"
	ErrCodeInvalidType  Code = "INVALID_TYPE"
	ErrCodeInvalidGraph Code = "INVALID_GRAPH"

	// Resource not found errors
	ErrCodeGraphNotFound Code = "GRAPH_NOT_FOUND"
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"

	// Rule errors
	ErrCodeConnectionDenied  Code = "CONNECTION_DENIED"
	ErrCodeDuplicateEntrance Code = "ENTRANCE_EXISTS"
	ErrCodeEntranceProtected Code = "ENTRANCE_PROTECTED"
	ErrCodeGraphExists       Code = "GRAPH_EXISTS"

	// Backend errors
	ErrCodeStorage     Code = "STORAGE_ERROR"
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
	if e.Cause != nil && e.Cause.Error() != e.Message {
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
