package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/sandboxops/console/internal/errors"
	"github.com/sandboxops/console/internal/screens"
)

// DetermineErrorStatus maps a handler error to an HTTP status code.
func DetermineErrorStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, screens.ErrUnknownScreen), apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrRegistryClosed), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the text shown to users for status.
func errorMessage(status int, err error) string {
	switch status {
	case http.StatusNotFound:
		return "The requested screen does not exist."
	case http.StatusServiceUnavailable:
		return "The console is shutting down. Try again shortly."
	case http.StatusBadRequest:
		if err != nil {
			return err.Error()
		}
	}
	return http.StatusText(status)
}

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W   http.ResponseWriter
	R   *http.Request
	Err error
}

// renderError writes err as a JSON error for API requests and as the error
// page for browser requests.
func (h *ListHandlers) renderError(opts ErrorOpts) {
	status := DetermineErrorStatus(opts.Err)
	if status == http.StatusOK {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(opts.R.Context(), "request failed",
			"path", opts.R.URL.Path,
			"error", opts.Err,
		)
	}

	if h.Renderer == nil || isAPIRequest(opts.R) {
		code := "internal"
		if c := apperrors.GetCode(opts.Err); c != "" {
			code = string(c)
		} else if status == http.StatusNotFound {
			code = string(apperrors.ErrCodeNotFound)
		}
		WriteAPIError(opts.W, status, code, errorMessage(status, opts.Err))
		return
	}

	data := &ErrorPageData{
		Layout:  buildLayout(h.Sessions.Screens(), PageError, http.StatusText(status), h.IsDev),
		Status:  status,
		Message: errorMessage(status, opts.Err),
	}
	if err := h.Renderer.RenderError(opts.W, status, data); err != nil {
		http.Error(opts.W, http.StatusText(status), status)
	}
}

func isAPIRequest(r *http.Request) bool {
	return len(r.URL.Path) >= len(APIPathPrefix) && r.URL.Path[:len(APIPathPrefix)] == APIPathPrefix
}
