package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDeliverRetriesUntilSuccess(t *testing.T) {
	prev := RetryInterval
	RetryInterval = time.Millisecond
	t.Cleanup(func() { RetryInterval = prev })

	calls := 0
	err := Deliver(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDeliverGivesUp(t *testing.T) {
	prev := RetryInterval
	RetryInterval = time.Millisecond
	t.Cleanup(func() { RetryInterval = prev })

	calls := 0
	err := Deliver(context.Background(), 2, func() error {
		calls++
		return errors.New("down")
	})
	if err == nil || err.Error() != "down" {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected retry limit plus one attempts, got %d", calls)
	}
}

func TestDeliverStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Deliver(ctx, 5, func() error {
		calls++
		return errors.New("down")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls > 1 {
		t.Fatalf("expected at most one attempt after cancellation, got %d", calls)
	}
}

func TestSinkFuncNil(t *testing.T) {
	var f SinkFunc
	if err := f.SendOutage(context.Background(), OutagePayload{}); err != nil {
		t.Fatalf("expected nil sink func to be a no-op, got %v", err)
	}
}

func TestPostJSONReportsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_such_channel", http.StatusNotFound)
	}))
	defer srv.Close()

	err := PostJSON(context.Background(), srv.Client(), srv.URL, "webhook", map[string]string{"text": "hi"})
	if err == nil || !strings.Contains(err.Error(), "webhook responded 404") || !strings.Contains(err.Error(), "no_such_channel") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPClientDefaults(t *testing.T) {
	if got := HTTPClient(nil, 0); got.Timeout != 5*time.Second {
		t.Fatalf("expected 5s default, got %v", got.Timeout)
	}
	hc := &http.Client{}
	if HTTPClient(hc, time.Second) != hc {
		t.Fatal("expected provided client to be reused")
	}
}
