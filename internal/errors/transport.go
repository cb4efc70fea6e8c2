package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// FromStatus maps a non-2xx backend response to an AppError. body is an
// optional excerpt of the response used as the cause.
func FromStatus(status int, body string) *AppError {
	e := &AppError{Status: status}
	if body = strings.TrimSpace(body); body != "" {
		e.Cause = errors.New(body)
	}
	switch {
	case status == http.StatusUnauthorized:
		e.Code, e.Message = ErrCodeUnauthorized, "Authentication with the sandbox backend failed."
	case status == http.StatusForbidden:
		e.Code, e.Message = ErrCodeForbidden, "Access to this list is not permitted."
	case status == http.StatusNotFound:
		e.Code, e.Message = ErrCodeNotFound, "The requested list does not exist."
	case status == http.StatusTooManyRequests:
		e.Code, e.Message = ErrCodeRateLimited, "The sandbox backend is throttling requests."
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Code, e.Message = ErrCodeValidation, "The sandbox backend rejected the list query."
	case status >= http.StatusInternalServerError:
		e.Code, e.Message = ErrCodeUnavailable, "The sandbox backend is unavailable."
	default:
		e.Code, e.Message = ErrCodeInternal, "Unexpected response from the sandbox backend: "+http.StatusText(status)
	}
	return e
}

// MapTransportError maps errors returned by an HTTP round trip to AppError
// instances:
// - context.DeadlineExceeded → Timeout
// - context.Canceled → Canceled
// - an existing AppError is returned unchanged
// - anything else → Network
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}
	return Network(err, "Could not reach the sandbox backend.")
}

// Retryable reports whether a failed request may succeed when repeated:
// transport failures, timeouts, throttling and server errors. Client errors
// and cancellations are final.
func Retryable(err error) bool {
	switch GetCode(err) {
	case ErrCodeNetwork, ErrCodeTimeout, ErrCodeRateLimited, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}
