// Package apperr defines the error taxonomy shared by the query layer and its transports.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a failure for programmatic handling.
type Code string

// Error codes.
const (
	CodeInvalidParameter  Code = "INVALID_PARAMETER"
	CodeInvalidDateFormat Code = "INVALID_DATE_FORMAT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInsufficientData  Code = "INSUFFICIENT_DATA"
	CodeDataNotFound      Code = "DATA_NOT_FOUND"
	CodeDataInvalid       Code = "DATA_INVALID"
	CodeInternal          Code = "INTERNAL"
)

// Sentinels for errors.Is matching. Only the code is compared.
var (
	ErrInvalidParameter  = &Error{Code: CodeInvalidParameter}
	ErrInvalidDateFormat = &Error{Code: CodeInvalidDateFormat}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrInsufficientData  = &Error{Code: CodeInsufficientData}
	ErrDataNotFound      = &Error{Code: CodeDataNotFound}
	ErrDataInvalid       = &Error{Code: CodeDataInvalid}
	ErrInternal          = &Error{Code: CodeInternal}
)

// Error is a tagged failure carrying a user-facing message and suggestion.
// Suggestion must never contain file paths or library messages; the cause
// is kept for logs only.
type Error struct {
	Code       Code
	Message    string
	Suggestion string
	cause      error
}

// New creates an Error.
func New(code Code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// Wrap creates an Error that remembers the underlying cause.
func Wrap(cause error, code Code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// From converts any error into an *Error. Errors that are not already tagged
// become INTERNAL with a generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Wrap(err, CodeInternal, "Unexpected internal error", "Please try again; if the problem persists, rebuild the artifact")
}

// Body is the wire shape of an error response.
type Body struct {
	Error      string `json:"error"`
	ErrorCode  Code   `json:"error_code"`
	Suggestion string `json:"suggestion"`
}

// Body returns the wire representation of e.
func (e *Error) Body() Body {
	return Body{Error: e.Message, ErrorCode: e.Code, Suggestion: e.Suggestion}
}
