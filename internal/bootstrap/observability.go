package bootstrap

import (
	"log/slog"

	"github.com/sandboxops/console/config"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/observability/metrics"
	"github.com/sandboxops/console/internal/observability/notify/pagerduty"
	"github.com/sandboxops/console/internal/observability/notify/slack"
	"github.com/sandboxops/console/internal/observability/statsd"
	"github.com/sandboxops/console/internal/service/failurenotifier"
)

// ObservabilityContainer holds the metrics and outage alerting adapters.
type ObservabilityContainer struct {
	// Metrics is nil when metrics are disabled.
	Metrics *statsd.Client
	Monitor *failurenotifier.Monitor
}

// Sink returns the metrics sink, nil when metrics are disabled.
//
//nolint:ireturn // callers only need the Sink interface.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.Metrics == nil {
		return nil
	}
	return o.Metrics
}

// Observer returns the fetch observer installed on every list controller.
func (o ObservabilityContainer) Observer() func(listview.FetchEvent) {
	emit := metrics.Observer(o.Sink())
	monitor := o.Monitor
	return func(ev listview.FetchEvent) {
		if emit != nil {
			emit(ev)
		}
		if monitor != nil {
			monitor.Observe(ev)
		}
	}
}

// Close flushes pending alerts and closes the metrics connection.
func (o ObservabilityContainer) Close() error {
	if o.Monitor != nil {
		o.Monitor.Wait()
	}
	if o.Metrics != nil {
		return o.Metrics.Close()
	}
	return nil
}

// BuildObservability configures metrics and notification adapters.
func BuildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var out ObservabilityContainer
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			out.Metrics = client
		}
	}

	monitorOpts := failurenotifier.MonitorOptions{
		Policy: failurenotifier.MonitorPolicy{
			Threshold: cfg.Notifications.FailureThreshold,
			Cooldown:  cfg.Notifications.Cooldown,
			Timeout:   cfg.Notifications.Timeout,
		},
		Logger: obsLogger,
	}
	if svc := buildFailureNotifier(obsLogger, cfg.Notifications); svc.Enabled() {
		monitorOpts.Notifier = svc
	}
	out.Monitor = failurenotifier.NewMonitor(monitorOpts)
	return out
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{Logger: logger})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
			ConsoleURL: cfg.Slack.ConsoleURL,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{Logger: logger, Sinks: sinks})
}
