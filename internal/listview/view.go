package listview

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/sandboxops/console/internal/errors"
)

// Status is the lifecycle state exposed by the read model.
type Status int

const (
	// StatusIdle is the state before Mount.
	StatusIdle Status = iota
	// StatusLoading is a fetch in flight with nothing fetched yet.
	StatusLoading
	// StatusRefreshing is a fetch in flight while a previous result is shown.
	StatusRefreshing
	// StatusReady means the latest fetch succeeded, possibly with zero items.
	StatusReady
	// StatusError means the latest fetch failed; the previous result is kept.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusRefreshing:
		return "refreshing"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Busy reports whether a fetch is in flight.
func (s Status) Busy() bool { return s == StatusLoading || s == StatusRefreshing }

// ErrorInfo describes the failure of the latest fetch.
type ErrorInfo struct {
	Code       string `json:"code"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *ErrorInfo) Error() string { return e.Message }

// Unwrap returns the underlying fetch error.
func (e *ErrorInfo) Unwrap() error { return e.Err }

func newErrorInfo(err error) *ErrorInfo {
	info := &ErrorInfo{
		Code:       string(apperrors.ErrCodeNetwork),
		StatusCode: apperrors.GetStatus(err),
		Message:    err.Error(),
		Err:        err,
	}
	switch {
	case apperrors.GetCode(err) != "":
		info.Code = string(apperrors.GetCode(err))
	case errors.Is(err, context.DeadlineExceeded):
		info.Code = string(apperrors.ErrCodeTimeout)
	}
	return info
}

// View is the read model of a Controller: the visible page plus metadata.
type View[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
	Status     Status         `json:"status"`
	Err        *ErrorInfo     `json:"error,omitempty"`
	Filters    FilterSet      `json:"-"`
	Page       PageSpec       `json:"-"`
}
