// Package failurenotifier raises outage alerts when list fetches against the
// sandbox backend keep failing, and fans them out to notification sinks.
package failurenotifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sandboxops/console/internal/observability/notify"
)

// SinkRegistration names a sink for logs and delivery errors.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures a Service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
}

// Service delivers outage payloads to every registered sink concurrently.
// A failing sink never blocks or cancels delivery to the others.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
}

// NewService drops nil sinks and names unnamed ones after their position.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{logger: logger.With("component", "failure_notifier")}
	for i, reg := range opts.Sinks {
		if reg.Sink == nil {
			continue
		}
		if reg.Name == "" {
			reg.Name = fmt.Sprintf("sink-%d", i)
		}
		s.sinks = append(s.sinks, reg)
	}
	return s
}

// NotifyOutage sends payload to all sinks and waits for them. The returned
// error joins the failures of individual sinks.
func (s *Service) NotifyOutage(ctx context.Context, payload notify.OutagePayload) error {
	if len(s.sinks) == 0 {
		return nil
	}
	payload = withSeverity(payload)

	errs := make([]error, len(s.sinks))
	var g errgroup.Group
	for i, reg := range s.sinks {
		g.Go(func() error {
			if err := reg.Sink.SendOutage(ctx, payload); err != nil {
				s.logger.ErrorContext(ctx, "outage delivery failed",
					"sink", reg.Name,
					"list", payload.List,
					"resolved", payload.Resolved,
					"error", err,
				)
				errs[i] = fmt.Errorf("%s: %w", reg.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func withSeverity(p notify.OutagePayload) notify.OutagePayload {
	if p.Severity != "" {
		return p
	}
	p.Severity = notify.SeverityCritical
	if p.Resolved {
		p.Severity = notify.SeverityInfo
	}
	return p
}

// Enabled reports whether any sink is registered.
func (s *Service) Enabled() bool { return len(s.sinks) > 0 }

// SinkNames lists the registered sinks in registration order.
func (s *Service) SinkNames() []string {
	names := make([]string, len(s.sinks))
	for i, reg := range s.sinks {
		names[i] = reg.Name
	}
	return names
}
