package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeAuth          ErrorType = "auth"
	ErrorTypeMissingParam  ErrorType = "missing_param"
	ErrorTypeRequest       ErrorType = "request"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeNotFound      ErrorType = "not_found"
)

// Error represents a client error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given type
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given type around a cause
func Wrap(t ErrorType, err error, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: err}
}

// Configuration reports a missing or ambiguous client setup
func Configuration(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfiguration, format, args...)
}

// Auth reports a cookie or session that failed validation
func Auth(format string, args ...interface{}) *Error {
	return New(ErrorTypeAuth, format, args...)
}

// Request reports a transport or protocol failure
func Request(code int, err error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    ErrorTypeRequest,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Err:     err,
	}
}

// IsType reports whether err is, or wraps, an *Error of type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}
