// Package errors provides structured error types for changetower.
//
// Errors carry a machine-readable [Code] next to a human-readable message so
// that the CLI, the HTTP API and the fetch pipeline can all classify a failure
// without string matching. The pipeline never throws for expected failures;
// it stores [UserMessage] of the error on the per-package result instead.
//
// # Error Codes
//
//   - INVALID_*: input rejected before any I/O happened
//   - *NOT_FOUND: the remote resource legitimately does not exist (never retried)
//   - NETWORK_ERROR: transport or server failure that survived all retries
//   - CACHE_UNAVAILABLE: the persistent store could not be opened
//   - INTERNAL_ERROR: anything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidBranch, "unknown branch %q", branch)
//	if errors.Is(err, errors.ErrCodeInvalidBranch) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidBranch   Code = "INVALID_BRANCH"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidRecord   Code = "INVALID_RECORD"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Expected absence
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeChangelogNotFound Code = "CHANGELOG_NOT_FOUND"

	// Transient failures
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Storage
	ErrCodeCacheUnavailable Code = "CACHE_UNAVAILABLE"

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
// Only the outermost *Error in the chain is consulted.
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
// For *Error types the code prefix is dropped and the cause, if any, appended.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsAbsence reports whether err describes a resource that legitimately does
// not exist, as opposed to a failure to reach it.
func IsAbsence(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeChangelogNotFound:
		return true
	}
	return false
}
