// Package pagerduty opens and resolves PagerDuty incidents for list outages
// through the Events API v2.
package pagerduty

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sandboxops/console/internal/observability/notify"
)

// APIEndpoint is the Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

const defaultName = "sandbox-console"

type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// Endpoint overrides APIEndpoint.
	Endpoint string
}

// Client is a notify.Sink. Each list maps to one dedup key so repeated
// triggers update a single incident and a recovery resolves it.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	cfg.RoutingKey = strings.TrimSpace(cfg.RoutingKey)
	if cfg.RoutingKey == "" {
		return nil, errors.New("pagerduty routing key is required")
	}
	cfg.Source = notify.Or(strings.TrimSpace(cfg.Source), defaultName)
	cfg.Component = notify.Or(strings.TrimSpace(cfg.Component), defaultName)
	cfg.Endpoint = notify.Or(strings.TrimSpace(cfg.Endpoint), APIEndpoint)
	cfg.RetryLimit = max(cfg.RetryLimit, 0)
	return &Client{cfg: cfg, http: notify.HTTPClient(cfg.Client, cfg.Timeout)}, nil
}

type event struct {
	RoutingKey  string        `json:"routing_key"`
	EventAction string        `json:"event_action"`
	DedupKey    string        `json:"dedup_key"`
	Payload     *eventPayload `json:"payload,omitempty"`
}

type eventPayload struct {
	Summary       string         `json:"summary"`
	Severity      string         `json:"severity"`
	Source        string         `json:"source"`
	Component     string         `json:"component"`
	Timestamp     string         `json:"timestamp"`
	CustomDetails map[string]any `json:"custom_details"`
}

// SendOutage triggers the list's incident, or resolves it when p.Resolved.
func (c *Client) SendOutage(ctx context.Context, p notify.OutagePayload) error {
	ev := c.buildEvent(p)
	return notify.Deliver(ctx, c.cfg.RetryLimit, func() error {
		return notify.PostJSON(ctx, c.http, c.cfg.Endpoint, "pagerduty", ev)
	})
}

func dedupKey(list string) string {
	return defaultName + ":list:" + notify.Or(list, "unknown")
}

func (c *Client) buildEvent(p notify.OutagePayload) event {
	ev := event{
		RoutingKey:  c.cfg.RoutingKey,
		EventAction: "resolve",
		DedupKey:    dedupKey(p.List),
	}
	if p.Resolved {
		return ev
	}

	at := p.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	details := make(map[string]any, len(p.Metadata)+4)
	for k, v := range p.Metadata {
		details[k] = v
	}
	// Built-in fields win over metadata with the same name.
	details["list"] = p.List
	details["failures"] = p.Failures
	details["error"] = p.Error
	details["error_class"] = p.ErrorClass

	ev.EventAction = "trigger"
	ev.Payload = &eventPayload{
		Summary: fmt.Sprintf("List %s failed %d consecutive fetches",
			notify.Or(p.Title, notify.Or(p.List, "unknown")), p.Failures),
		Severity:      notify.Or(strings.ToLower(p.Severity), notify.SeverityCritical),
		Source:        c.cfg.Source,
		Component:     c.cfg.Component,
		Timestamp:     at.UTC().Format(time.RFC3339),
		CustomDetails: details,
	}
	return ev
}
