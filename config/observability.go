package config

import (
	"log/slog"
	"strings"
	"time"
)

const serviceName = "sandbox-console"

// ObservabilityConfig covers the process logger, StatsD list metrics and
// backend outage alerts.
type ObservabilityConfig struct {
	Logging       ObservabilityLoggingConfig
	Metrics       ObservabilityMetricsConfig
	Notifications ObservabilityNotificationsConfig
}

func (c *ObservabilityConfig) Sanitize() {
	c.Logging.Sanitize()
	c.Metrics.Sanitize()
	c.Notifications.Sanitize()
}

type ObservabilityLoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `env:"LOG_LEVEL"  envDefault:"info"`
	// Format is json or text.
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Sanitize falls back to info and json for unknown names.
func (c *ObservabilityLoggingConfig) Sanitize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if _, ok := logLevels[c.Level]; !ok {
		c.Level = "info"
	}
	if strings.EqualFold(strings.TrimSpace(c.Format), "text") {
		c.Format = "text"
	} else {
		c.Format = "json"
	}
}

func (c *ObservabilityLoggingConfig) SlogLevel() slog.Level {
	return logLevels[c.Level] // zero value is LevelInfo
}

// ObservabilityMetricsConfig enables the StatsD list metrics.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"sandbox_console"`
}

func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	c.Enabled = c.Enabled && c.StatsdAddress != ""
}

func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityNotificationsConfig controls alerts raised when a list keeps
// failing to fetch. A sink only stays enabled when its credential is set.
type ObservabilityNotificationsConfig struct {
	Enabled    bool          `env:"OBSERVABILITY_NOTIFICATIONS_ENABLED"     envDefault:"false"`
	Timeout    time.Duration `env:"OBSERVABILITY_NOTIFICATIONS_TIMEOUT"     envDefault:"5s"`
	RetryLimit int           `env:"OBSERVABILITY_NOTIFICATIONS_RETRY_LIMIT" envDefault:"3"`

	// FailureThreshold consecutive failed fetches of one list raise an alert.
	FailureThreshold int `env:"OBSERVABILITY_NOTIFICATIONS_FAILURE_THRESHOLD" envDefault:"5"`
	// Cooldown suppresses repeated alerts for the same list.
	Cooldown time.Duration `env:"OBSERVABILITY_NOTIFICATIONS_COOLDOWN" envDefault:"15m"`

	Slack     SlackNotificationConfig     `envPrefix:"OBSERVABILITY_NOTIFICATIONS_SLACK_"`
	PagerDuty PagerDutyNotificationConfig `envPrefix:"OBSERVABILITY_NOTIFICATIONS_PAGERDUTY_"`
}

func (c *ObservabilityNotificationsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	c.RetryLimit = max(c.RetryLimit, 0)
	c.FailureThreshold = max(c.FailureThreshold, 1)
	c.Cooldown = max(c.Cooldown, 0)

	c.Slack.sanitize()
	c.PagerDuty.sanitize()
	c.Slack.Enabled = c.Enabled && c.Slack.Enabled && c.Slack.WebhookURL != ""
	c.PagerDuty.Enabled = c.Enabled && c.PagerDuty.Enabled && c.PagerDuty.RoutingKey != ""
}

type SlackNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	WebhookURL string `env:"WEBHOOK_URL"`
	Channel    string `env:"CHANNEL"`
	Username   string `env:"USERNAME"    envDefault:"sandbox-console"`
	// ConsoleURL lets alerts link to the failing screen.
	ConsoleURL string `env:"CONSOLE_URL"`
}

func (c *SlackNotificationConfig) sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
	c.ConsoleURL = strings.TrimSpace(c.ConsoleURL)
	c.Username = orDefault(c.Username, serviceName)
}

// PagerDutyNotificationConfig targets the Events API v2.
type PagerDutyNotificationConfig struct {
	Enabled    bool   `env:"ENABLED"     envDefault:"false"`
	RoutingKey string `env:"ROUTING_KEY"`
	Source     string `env:"SOURCE"      envDefault:"sandbox-console"`
	Component  string `env:"COMPONENT"   envDefault:"sandbox-console"`
}

func (c *PagerDutyNotificationConfig) sanitize() {
	c.RoutingKey = strings.TrimSpace(c.RoutingKey)
	c.Source = orDefault(c.Source, serviceName)
	c.Component = orDefault(c.Component, serviceName)
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
