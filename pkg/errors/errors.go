// Package errors provides structured error types for devflow.
//
// Codes are machine-readable and survive the service boundary: the uniform
// result envelope carries both a human message and the code, so API clients
// can branch on the code without parsing text.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (package id, framework, coordinate)
//   - NOT_FOUND: the registry has no such package or version
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: transport failures
//   - MALFORMED_DATA: a registry or search payload could not be decoded
//   - CONFIGURATION: required credentials or settings are missing
//   - INTERNAL_ERROR: anything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFramework, "unknown framework %q", raw)
//	if errors.Is(err, errors.ErrCodeInvalidFramework) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch registration for %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidFramework  Code = "INVALID_FRAMEWORK"
	ErrCodeInvalidVersion    Code = "INVALID_VERSION"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Data errors
	ErrCodeMalformedData Code = "MALFORMED_DATA"

	// Setup errors
	ErrCodeConfiguration Code = "CONFIGURATION"

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

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidPackage, ErrCodeInvalidFramework,
		ErrCodeInvalidVersion, ErrCodeInvalidCoordinate:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork, ErrCodeMalformedData:
		return http.StatusBadGateway
	case ErrCodeConfiguration:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
