// Package metrics turns list controller events into StatsD metrics.
package metrics

import (
	"maps"

	"github.com/sandboxops/console/internal/listview"
	obserrors "github.com/sandboxops/console/internal/observability/errors"
	"github.com/sandboxops/console/internal/observability/statsd"
)

// Result values used for the "result" tag.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultStale   = "stale"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// Metric names.
const (
	MetricListFetch         = "list.fetch"
	MetricListFetchDuration = "list.fetch.duration"
	MetricListFetchItems    = "list.fetch.items"
	MetricCacheLookup       = "list.cache.lookup"
)

// EmitListFetch records one completed list fetch.
func EmitListFetch(sink statsd.Sink, ev listview.FetchEvent) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"list":   ev.List,
		"mode":   ev.Mode.String(),
		"result": fetchResult(ev),
	}
	if ev.Err != nil {
		if class := obserrors.Classify(ev.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(MetricListFetch, 1, tags)
	if ev.Duration > 0 {
		sink.Timing(MetricListFetchDuration, ev.Duration, maps.Clone(tags))
	}
	if ev.Err == nil && !ev.Stale {
		sink.Gauge(MetricListFetchItems, float64(ev.Items), map[string]string{"list": ev.List})
	}
}

// Observer returns a listview fetch observer bound to sink.
func Observer(sink statsd.Sink) func(listview.FetchEvent) {
	if sink == nil {
		return nil
	}
	return func(ev listview.FetchEvent) { EmitListFetch(sink, ev) }
}

// Cache tiers used for the "tier" tag.
const (
	TierLocal = "local"
	TierRedis = "redis"
)

// EmitCacheLookup records a list cache hit or miss on one tier for the
// named source.
func EmitCacheLookup(sink statsd.Sink, source, tier string, hit bool) {
	if sink == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	sink.Count(MetricCacheLookup, 1, map[string]string{"source": source, "tier": tier, "result": result})
}

func fetchResult(ev listview.FetchEvent) string {
	switch {
	case ev.Stale:
		return ResultStale
	case ev.Err != nil:
		return ResultError
	default:
		return ResultSuccess
	}
}

// Local cache tier metric names.
const (
	MetricLocalCacheEntries   = "list.cache.local.entries"
	MetricLocalCacheBytes     = "list.cache.local.bytes"
	MetricLocalCacheEvictions = "list.cache.local.evictions"
	MetricLocalCachePurged    = "list.cache.local.purged"
)

// LocalCacheStats is a snapshot of the in-process cache tier.
type LocalCacheStats struct {
	Entries   int
	Bytes     int
	Evictions uint64
	// Purged is the number of expired entries dropped by the last sweep.
	Purged int
}

// EmitLocalCacheStats records the occupancy of the in-process cache tier.
func EmitLocalCacheStats(sink statsd.Sink, s LocalCacheStats) {
	if sink == nil {
		return
	}
	tags := map[string]string{"tier": TierLocal}
	sink.Gauge(MetricLocalCacheEntries, float64(s.Entries), tags)
	sink.Gauge(MetricLocalCacheBytes, float64(s.Bytes), tags)
	sink.Gauge(MetricLocalCacheEvictions, float64(s.Evictions), tags)
	if s.Purged > 0 {
		sink.Count(MetricLocalCachePurged, int64(s.Purged), tags)
	}
}
