// Package slack posts list outage alerts to an incoming webhook.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sandboxops/console/internal/observability/notify"
)

type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// ConsoleURL is the console root; when set, list names link to their screen.
	ConsoleURL string
}

// Client is a notify.Sink for Slack incoming webhooks.
type Client struct {
	webhook    string
	channel    string
	username   string
	retryLimit int
	console    *url.URL
	http       *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	webhook := strings.TrimSpace(cfg.WebhookURL)
	if webhook == "" {
		return nil, errors.New("slack webhook url is required")
	}
	c := &Client{
		webhook:    webhook,
		channel:    strings.TrimSpace(cfg.Channel),
		username:   notify.Or(strings.TrimSpace(cfg.Username), "sandbox-console"),
		retryLimit: max(cfg.RetryLimit, 0),
		http:       notify.HTTPClient(cfg.Client, cfg.Timeout),
	}
	if u, err := url.Parse(strings.TrimSpace(cfg.ConsoleURL)); err == nil && u.Scheme != "" && u.Host != "" {
		c.console = u
	}
	return c, nil
}

type message struct {
	Text     string `json:"text"`
	Username string `json:"username"`
	Channel  string `json:"channel,omitempty"`
}

// SendOutage posts the alert, retrying failed deliveries.
func (c *Client) SendOutage(ctx context.Context, p notify.OutagePayload) error {
	msg := c.formatMessage(p)
	return notify.Deliver(ctx, c.retryLimit, func() error {
		return notify.PostJSON(ctx, c.http, c.webhook, "slack webhook", msg)
	})
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (c *Client) formatMessage(p notify.OutagePayload) message {
	head := "*Backend outage*"
	severity := notify.SeverityCritical
	if p.Resolved {
		head = "*Backend recovered*"
		severity = notify.SeverityInfo
	}
	if label := c.listLabel(p.List, p.Title); label != "" {
		head += " " + label
	}

	lines := []string{head}
	field := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, "• "+label+": "+value)
		}
	}
	field("Severity", notify.Or(p.Severity, severity))
	if p.Failures > 0 {
		field("Consecutive failures", strconv.Itoa(p.Failures))
	}
	field("Error class", p.ErrorClass)
	field("Error", escaper.Replace(p.Error))

	if len(p.Metadata) > 0 {
		lines = append(lines, "• Metadata:")
		keys := make([]string, 0, len(p.Metadata))
		for k := range p.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			lines = append(lines, "    • "+k+": "+p.Metadata[k])
		}
	}

	at := p.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	lines = append(lines, "• Timestamp: "+at.UTC().Format(time.RFC3339))

	return message{Text: strings.Join(lines, "\n"), Username: c.username, Channel: c.channel}
}

// listLabel names the list, linking it to its screen when a console URL is
// configured.
func (c *Client) listLabel(list, title string) string {
	slug := strings.TrimSpace(list)
	name := escaper.Replace(strings.TrimSpace(title))
	var link string
	if slug != "" && c.console != nil {
		link = c.console.JoinPath(slug).String()
	}
	slug = escaper.Replace(slug)

	switch {
	case link != "" && name != "":
		return fmt.Sprintf("<%s|%s> (`%s`)", link, name, slug)
	case link != "":
		return fmt.Sprintf("<%s|%s>", link, slug)
	case name != "" && slug != "":
		return fmt.Sprintf("%s (`%s`)", name, slug)
	case name != "":
		return name
	case slug != "":
		return "`" + slug + "`"
	}
	return ""
}
