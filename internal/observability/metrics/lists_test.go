package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sandboxops/console/internal/errors"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/observability/statsd"
)

func TestEmitListFetch_Success(t *testing.T) {
	var rec statsd.Recorder
	EmitListFetch(&rec, listview.FetchEvent{
		List:     "active-tasks",
		Mode:     listview.ServerPaginated,
		Duration: 20 * time.Millisecond,
		Items:    7,
	})

	counts := rec.Named(MetricListFetch)
	require.Len(t, counts, 1)
	assert.Equal(t, map[string]string{
		"list":   "active-tasks",
		"mode":   "server",
		"result": ResultSuccess,
	}, counts[0].Tags)
	require.Len(t, rec.Named(MetricListFetchDuration), 1)
	items := rec.Named(MetricListFetchItems)
	require.Len(t, items, 1)
	assert.InDelta(t, 7, items[0].Value, 0)
}

func TestEmitListFetch_ErrorAndStale(t *testing.T) {
	var rec statsd.Recorder
	EmitListFetch(&rec, listview.FetchEvent{
		List: "users",
		Mode: listview.ClientPaginated,
		Err:  apperrors.FromStatus(502, ""),
	})
	EmitListFetch(&rec, listview.FetchEvent{
		List:  "users",
		Mode:  listview.ClientPaginated,
		Err:   errors.New("canceled"),
		Stale: true,
	})

	counts := rec.Named(MetricListFetch)
	require.Len(t, counts, 2)
	assert.Equal(t, ResultError, counts[0].Tags["result"])
	assert.Equal(t, "unavailable", counts[0].Tags["error_class"])
	assert.Equal(t, ResultStale, counts[1].Tags["result"])
	assert.Empty(t, rec.Named(MetricListFetchItems))
	assert.Empty(t, rec.Named(MetricListFetchDuration))
}

func TestObserverAndNilSink(t *testing.T) {
	assert.Nil(t, Observer(nil))
	EmitListFetch(nil, listview.FetchEvent{})
	EmitCacheLookup(nil, "tasks", TierLocal, true)

	var rec statsd.Recorder
	Observer(&rec)(listview.FetchEvent{List: "vms", Mode: listview.ClientPaginated})
	EmitCacheLookup(&rec, "vms", TierRedis, false)

	require.Len(t, rec.Named(MetricListFetch), 1)
	lookups := rec.Named(MetricCacheLookup)
	require.Len(t, lookups, 1)
	assert.Equal(t, "miss", lookups[0].Tags["result"])
	assert.Equal(t, TierRedis, lookups[0].Tags["tier"])
}

func TestEmitLocalCacheStats(t *testing.T) {
	var rec statsd.Recorder
	EmitLocalCacheStats(&rec, LocalCacheStats{Entries: 4, Bytes: 512, Evictions: 2})
	assert.Empty(t, rec.Named(MetricLocalCachePurged), "no purge, no count")
	bytes := rec.Named(MetricLocalCacheBytes)
	require.Len(t, bytes, 1)
	assert.InDelta(t, 512, bytes[0].Value, 0)
	assert.Equal(t, "local", bytes[0].Tags["tier"])

	EmitLocalCacheStats(&rec, LocalCacheStats{Entries: 1, Purged: 3})
	purged := rec.Named(MetricLocalCachePurged)
	require.Len(t, purged, 1)
	assert.InDelta(t, 3, purged[0].Value, 0)

	EmitLocalCacheStats(nil, LocalCacheStats{Entries: 1})
}
