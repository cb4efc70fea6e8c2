package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxops/console/internal/data"
	"github.com/sandboxops/console/internal/observability/metrics"
	"github.com/sandboxops/console/internal/observability/statsd"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSweepLocalCache_PurgesExpiredAndEmitsStats(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	lru := data.NewLocalLRU(data.LocalLRUConfig{Capacity: 8, Now: clock.Now})
	ctx := context.Background()
	require.NoError(t, lru.Set(ctx, "short", []byte("aaaa"), time.Second))
	require.NoError(t, lru.Set(ctx, "long", []byte("bb"), time.Hour))
	clock.Advance(2 * time.Second)

	var rec statsd.Recorder
	got := SweepLocalCache(lru, &rec, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, metrics.LocalCacheStats{Entries: 1, Bytes: 2, Purged: 1}, got)
	entries := rec.Named(metrics.MetricLocalCacheEntries)
	require.Len(t, entries, 1)
	assert.InDelta(t, 1, entries[0].Value, 0)
	assert.Equal(t, map[string]string{"tier": metrics.TierLocal}, entries[0].Tags)
	purged := rec.Named(metrics.MetricLocalCachePurged)
	require.Len(t, purged, 1)
	assert.InDelta(t, 1, purged[0].Value, 0)

	// A second sweep has nothing left to purge.
	got = SweepLocalCache(lru, &rec, nil)
	assert.Zero(t, got.Purged)
	assert.Len(t, rec.Named(metrics.MetricLocalCachePurged), 1)
}

type countingMaintainer struct {
	mu     sync.Mutex
	sweeps int
}

func (m *countingMaintainer) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
	return 0
}

func (m *countingMaintainer) Stats() data.LocalLRUStats { return data.LocalLRUStats{} }

func (m *countingMaintainer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweeps
}

func TestRunLocalCacheJanitor_SweepsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &countingMaintainer{}
	var rec statsd.Recorder
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunLocalCacheJanitor(ctx, m, 5*time.Millisecond, Telemetry{Metrics: &rec})
	}()

	require.Eventually(t, func() bool { return m.count() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancellation")
	}
	assert.NotEmpty(t, rec.Named(metrics.MetricLocalCacheEntries))
}
