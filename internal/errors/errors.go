// Package errors carries the error taxonomy shared by the backend client,
// the list controller and the HTTP layer. Every failure that reaches a
// screen is an *AppError whose Code decides how it is rendered and logged.
package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "not_found"
	ErrCodeValidation   ErrorCode = "validation"
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	ErrCodeForbidden    ErrorCode = "forbidden"
	ErrCodeRateLimited  ErrorCode = "rate_limited"
	// ErrCodeUnavailable is a 5xx from the backend.
	ErrCodeUnavailable ErrorCode = "unavailable"
	// ErrCodeNetwork is a transport failure before any response.
	ErrCodeNetwork ErrorCode = "network"
	// ErrCodeDecode is a response whose body could not be read as a list.
	ErrCodeDecode   ErrorCode = "decode"
	ErrCodeInternal ErrorCode = "internal"
	ErrCodeTimeout  ErrorCode = "timeout"
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError is a coded error. Message is safe to show to an operator; Cause
// is kept for logs and errors.Is/As.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Status is the HTTP status the backend answered with, 0 when no
	// response was received.
	Status int
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// New returns an AppError without a cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NotFound(message string) *AppError   { return New(ErrCodeNotFound, message) }
func Validation(message string) *AppError { return New(ErrCodeValidation, message) }
func Internal(message string) *AppError   { return New(ErrCodeInternal, message) }

func Internalf(format string, args ...any) *AppError {
	return New(ErrCodeInternal, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Network wraps a failure that produced no response.
func Network(err error, message string) *AppError {
	return Wrap(err, ErrCodeNetwork, message)
}

func as(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether the outermost AppError in err's chain has code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := as(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool     { return HasCode(err, ErrCodeNotFound) }
func IsValidation(err error) bool   { return HasCode(err, ErrCodeValidation) }
func IsUnauthorized(err error) bool { return HasCode(err, ErrCodeUnauthorized) }
func IsInternal(err error) bool     { return HasCode(err, ErrCodeInternal) }
func IsTimeout(err error) bool      { return HasCode(err, ErrCodeTimeout) }
func IsCanceled(err error) bool     { return HasCode(err, ErrCodeCanceled) }

// GetCode returns the code of the outermost AppError, or "".
func GetCode(err error) ErrorCode {
	if appErr, ok := as(err); ok {
		return appErr.Code
	}
	return ""
}

// GetStatus returns the backend status carried by err, or 0.
func GetStatus(err error) int {
	if appErr, ok := as(err); ok {
		return appErr.Status
	}
	return 0
}
