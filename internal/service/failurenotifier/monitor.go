package failurenotifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/sandboxops/console/internal/errors"
	"github.com/sandboxops/console/internal/listview"
	obserrors "github.com/sandboxops/console/internal/observability/errors"
	"github.com/sandboxops/console/internal/observability/notify"
)

// Notifier is the subset of Service used by Monitor.
type Notifier interface {
	NotifyOutage(ctx context.Context, payload notify.OutagePayload) error
}

// MonitorPolicy tunes when an outage is raised.
type MonitorPolicy struct {
	// Threshold is the number of consecutive failed fetches of one list
	// that raises an alert. Values below 1 are treated as 1.
	Threshold int
	// Cooldown is the minimum time between two alerts for the same list.
	Cooldown time.Duration
	// Timeout bounds one delivery.
	Timeout time.Duration
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	Notifier Notifier
	Policy   MonitorPolicy
	Logger   *slog.Logger
}

type listState struct {
	failures  int
	alerted   bool
	lastAlert time.Time
}

// Monitor tracks consecutive fetch failures per list from controller fetch
// events and raises an outage once a list crosses the threshold. A list
// that recovers after an alert raises a resolved notification.
type Monitor struct {
	notifier Notifier
	policy   MonitorPolicy
	logger   *slog.Logger
	titles   map[string]string
	now      func() time.Time

	mu    sync.Mutex
	lists map[string]*listState

	wg sync.WaitGroup
}

// NewMonitor creates a Monitor.
func NewMonitor(opts MonitorOptions) *Monitor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	policy := opts.Policy
	if policy.Threshold < 1 {
		policy.Threshold = 1
	}
	if policy.Timeout <= 0 {
		policy.Timeout = 10 * time.Second
	}
	return &Monitor{
		notifier: opts.Notifier,
		policy:   policy,
		logger:   logger.With("component", "outage_monitor"),
		titles:   make(map[string]string),
		now:      time.Now,
		lists:    make(map[string]*listState),
	}
}

// SetTitle records the display title used in alerts for list.
func (m *Monitor) SetTitle(list, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titles[list] = title
}

// Observe consumes one fetch event. Stale and canceled fetches are ignored.
func (m *Monitor) Observe(ev listview.FetchEvent) {
	if m == nil || m.notifier == nil || ev.Stale || canceled(ev.Err) {
		return
	}

	payload, ok := m.record(ev)
	if !ok {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.policy.Timeout)
		defer cancel()
		if err := m.notifier.NotifyOutage(ctx, payload); err != nil {
			m.logger.Warn("outage notification incomplete", "list", payload.List, "resolved", payload.Resolved, "error", err)
		}
	}()
}

func (m *Monitor) record(ev listview.FetchEvent) (notify.OutagePayload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.lists[ev.List]
	if !ok {
		st = &listState{}
		m.lists[ev.List] = st
	}
	now := m.now()

	base := notify.OutagePayload{
		List:       ev.List,
		Title:      m.titles[ev.List],
		OccurredAt: now,
		Metadata:   map[string]string{"mode": ev.Mode.String()},
	}

	if ev.Err == nil {
		recovered := st.alerted
		failures := st.failures
		*st = listState{}
		if !recovered {
			return notify.OutagePayload{}, false
		}
		m.logger.Info("list fetches recovered", "list", ev.List, "failures", failures)
		base.Resolved = true
		base.Failures = failures
		return base, true
	}

	st.failures++
	if st.failures < m.policy.Threshold {
		return notify.OutagePayload{}, false
	}
	if st.alerted && now.Sub(st.lastAlert) < m.policy.Cooldown {
		return notify.OutagePayload{}, false
	}

	st.alerted = true
	st.lastAlert = now
	base.Failures = st.failures
	base.Error = ev.Err.Error()
	base.ErrorClass = obserrors.Classify(ev.Err)
	m.logger.Warn("list fetches failing",
		"list", ev.List,
		"failures", st.failures,
		"error_class", base.ErrorClass,
	)
	return base, true
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || apperrors.GetCode(err) == apperrors.ErrCodeCanceled
}

// Failures returns the current consecutive failure count for list.
func (m *Monitor) Failures(list string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.lists[list]; ok {
		return st.failures
	}
	return 0
}

// Wait blocks until all in-flight notifications are delivered.
func (m *Monitor) Wait() {
	m.wg.Wait()
}
