// Package notify defines the outage alerts raised when the sandbox backend
// keeps failing list fetches, and the sinks that deliver them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityInfo     = "info"
)

// OutagePayload describes a list whose backend fetches are failing, or
// have recovered when Resolved is set.
type OutagePayload struct {
	List       string
	Title      string
	Failures   int
	Resolved   bool
	Error      string
	ErrorClass string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming outage notifications.
type Sink interface {
	SendOutage(ctx context.Context, payload OutagePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload OutagePayload) error

// SendOutage implements the Sink interface.
func (f SinkFunc) SendOutage(ctx context.Context, payload OutagePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// RetryInterval is the base delay between delivery attempts.
var RetryInterval = 200 * time.Millisecond

// Deliver calls send up to retryLimit+1 times with a growing delay between
// attempts, stopping early when ctx is done.
func Deliver(ctx context.Context, retryLimit int, send func() error) error {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(RetryInterval),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(retryLimit, 0))), ctx)
	return backoff.Retry(send, policy)
}

// PostJSON encodes v and POSTs it to endpoint. Non-2xx responses become
// errors carrying the first few KiB of the body; service names the
// destination in error messages.
func PostJSON(ctx context.Context, hc *http.Client, endpoint, service string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", service, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s responded %s: %s", service, resp.Status, strings.TrimSpace(string(msg)))
	}
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}

// HTTPClient returns hc, or a client with the given timeout (5s when unset).
func HTTPClient(hc *http.Client, timeout time.Duration) *http.Client {
	if hc != nil {
		return hc
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Or returns value unless it is blank.
func Or(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
