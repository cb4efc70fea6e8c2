// Package errors labels errors for log attributes and metric tags.
package errors

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net"
	"reflect"
	"strings"

	apperrors "github.com/sandboxops/console/internal/errors"
)

// Classify returns a low-cardinality label for err. Coded errors report their
// code. Context, network and JSON errors map onto the matching code. Anything
// else reports the snake_cased type of the innermost wrapped error.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}
	if code := stdlibCode(err); code != "" {
		return string(code)
	}
	return typeLabel(innermost(err))
}

func stdlibCode(err error) apperrors.ErrorCode {
	var (
		netErr    net.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return apperrors.ErrCodeTimeout
	case goerrors.Is(err, context.Canceled):
		return apperrors.ErrCodeCanceled
	case goerrors.As(err, &netErr) && netErr.Timeout():
		return apperrors.ErrCodeTimeout
	case goerrors.As(err, &syntaxErr), goerrors.As(err, &typeErr):
		return apperrors.ErrCodeDecode
	}
	return ""
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeLabel(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}
