package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandboxops/console/internal/data"
	"github.com/sandboxops/console/internal/observability/metrics"
	"github.com/sandboxops/console/internal/observability/statsd"
)

// DefaultLocalCacheSweepInterval is used when RunLocalCacheJanitor gets no
// interval.
const DefaultLocalCacheSweepInterval = 30 * time.Second

// LocalCacheMaintainer is the maintenance surface of the in-process tier.
// *data.LocalLRU implements it.
type LocalCacheMaintainer interface {
	PurgeExpired() int
	Stats() data.LocalLRUStats
}

// RunLocalCacheJanitor drops expired entries from cache every interval and
// reports the tier's occupancy, until ctx is done.
func RunLocalCacheJanitor(ctx context.Context, cache LocalCacheMaintainer, interval time.Duration, tel Telemetry) {
	if cache == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultLocalCacheSweepInterval
	}
	logger := tel.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "local_cache_janitor")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepLocalCache(cache, tel.Metrics, logger)
		}
	}
}

// SweepLocalCache purges expired entries once and emits the resulting stats.
func SweepLocalCache(cache LocalCacheMaintainer, sink statsd.Sink, logger *slog.Logger) metrics.LocalCacheStats {
	purged := cache.PurgeExpired()
	st := cache.Stats()
	snapshot := metrics.LocalCacheStats{
		Entries:   st.Size,
		Bytes:     st.Bytes,
		Evictions: st.Evictions,
		Purged:    purged,
	}
	metrics.EmitLocalCacheStats(sink, snapshot)
	if purged > 0 && logger != nil {
		logger.Debug("purged expired list cache entries", "purged", purged, "entries", st.Size, "bytes", st.Bytes)
	}
	return snapshot
}
