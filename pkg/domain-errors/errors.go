// Package domainerrors provides coded errors that services return and the
// transport layer translates into HTTP responses. Stores return sentinel
// errors; services wrap them here with a code and a caller-facing message.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and retry policy.
type Code string

const (
	// CodeBadRequest marks validation failures: required field missing or malformed.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks authenticity failures such as a payment signature mismatch.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks lookups for records that do not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks uniqueness violations surfaced to the caller.
	CodeConflict Code = "conflict"
	// CodeUpstream marks failures reported by an external collaborator (payment gateway).
	CodeUpstream Code = "upstream_error"
	// CodeInvariantViolation marks configuration errors: a course with no
	// question set, missing gateway credentials.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks storage faults and everything else unexpected.
	CodeInternal Code = "internal"
)

// Error carries a code, a caller-facing message, and a details tag naming the
// subsystem that failed. The wrapped cause is kept for logs, never for callers.
type Error struct {
	Code    Code
	Message string
	Details string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails tags the error with the subsystem that failed. Returns the same
// error for chaining.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// HasCode reports whether err is (or wraps) a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for plain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message, falling back to a generic one
// so internal details never leak through the envelope.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// DetailsOf extracts the subsystem tag, empty when untagged.
func DetailsOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return ""
}

// ToHTTPStatus maps a code to an HTTP status for the response envelope.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
