// Package errors provides structured error types for snyk-sync.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the API clients and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NETWORK / TIMEOUT / RATE_LIMITED: transport and quota failures
//   - CLIENT_ERROR: the remote API rejected the request (4xx other than 429)
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "limit is required for %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Remote API rejected the request
	ErrCodeClientError  Code = "CLIENT_ERROR"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeNotFound     Code = "NOT_FOUND"

	// Pagination and decoding
	ErrCodePageLimit Code = "PAGE_LIMIT"
	ErrCodeDecode    Code = "DECODE_ERROR"

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
// It unwraps the error chain looking for an *Error, *StatusError or
// *RateLimitedError with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds no coded error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code()
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.Code()
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

// StatusError describes an HTTP response the caller could not use. It keeps
// enough of the exchange (method, URL, status, headers) for the caller to
// log and abort the unit of work.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Code maps the status to an error code.
func (e *StatusError) Code() Code {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return ErrCodeUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrCodeNotFound
	case e.StatusCode >= 500 || e.StatusCode == 0:
		return ErrCodeNetwork
	default:
		return ErrCodeClientError
	}
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter time.Duration // Cool-down already applied before surfacing
	Status     *StatusError
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	msg := "rate limited"
	if e.Status != nil {
		msg = e.Status.Error() + ": " + msg
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (cooled down %s)", msg, e.RetryAfter)
	}
	return msg
}

// Unwrap exposes the underlying status error.
func (e *RateLimitedError) Unwrap() error {
	if e.Status == nil {
		return nil
	}
	return e.Status
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
