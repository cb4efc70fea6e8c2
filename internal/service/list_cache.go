package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandboxops/console/internal/core"
	"github.com/sandboxops/console/internal/listview"
	"github.com/sandboxops/console/internal/observability/metrics"
	"github.com/sandboxops/console/internal/observability/statsd"
)

// Default TTLs of cached list responses.
const (
	DefaultListCacheLocalTTL = 15 * time.Second
	DefaultListCacheRedisTTL = time.Minute
)

// CacheTiers are the caches consulted before the origin, in order. Both are
// optional.
type CacheTiers struct {
	Local core.CacheRepository
	Redis core.CacheRepository
}

// ListCacheConfig names the cached source and bounds entry lifetimes.
type ListCacheConfig struct {
	Name     string // Required: source name used in keys and metrics
	Prefix   string
	LocalTTL time.Duration
	RedisTTL time.Duration
}

// Telemetry groups the optional logger and metrics sink.
type Telemetry struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// CachedSourceOptions groups dependencies for CachedSource.
type CachedSourceOptions struct {
	Tiers     CacheTiers
	Config    ListCacheConfig
	Telemetry Telemetry
}

// CachedSource decorates a listview.Source with query-keyed response caching.
// Lookups go local tier, then Redis, then the origin. Concurrent identical
// misses share one origin call, which is cancelled once every caller waiting
// on it has gone. Errors are never cached, and cache failures are logged and
// bypassed.
type CachedSource[T any] struct {
	origin listview.Source[T]
	tiers  CacheTiers
	cfg    ListCacheConfig
	logger *slog.Logger
	sink   statsd.Sink
	group  singleflight.Group

	mu       sync.Mutex
	inflight map[string]*sharedFetch
}

// sharedFetch is the context of one origin call and the number of callers
// waiting on it.
type sharedFetch struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

var (
	_ listview.Source[struct{}] = (*CachedSource[struct{}])(nil)
	_ listview.Invalidator      = (*CachedSource[struct{}])(nil)
)

// NewCachedSource wraps origin.
func NewCachedSource[T any](origin listview.Source[T], opts CachedSourceOptions) (*CachedSource[T], error) {
	if origin == nil {
		return nil, errors.New("origin source is required")
	}
	if opts.Config.Name == "" {
		return nil, errors.New("cached source name is required")
	}
	cfg := opts.Config
	if cfg.LocalTTL <= 0 {
		cfg.LocalTTL = DefaultListCacheLocalTTL
	}
	if cfg.RedisTTL <= 0 {
		cfg.RedisTTL = DefaultListCacheRedisTTL
	}
	logger := opts.Telemetry.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource[T]{
		origin:   origin,
		tiers:    opts.Tiers,
		cfg:      cfg,
		logger:   logger.With("component", "list_cache", "source", cfg.Name),
		sink:     opts.Telemetry.Metrics,
		inflight: make(map[string]*sharedFetch),
	}, nil
}

// Key returns the cache key of params.
func (s *CachedSource[T]) Key(params listview.QueryParams) string {
	return core.ListCacheKey(s.cfg.Prefix, s.cfg.Name, params.Encode())
}

// FetchPage serves params from cache when possible.
func (s *CachedSource[T]) FetchPage(ctx context.Context, params listview.QueryParams) (listview.ListResult[T], error) {
	key := s.Key(params)
	if res, ok := s.lookup(ctx, key); ok {
		return res, nil
	}

	call := s.join(ctx, key)
	canceled := true
	defer func() { s.leave(key, call, canceled) }()

	ch := s.group.DoChan(key, func() (any, error) {
		res, err := s.origin.FetchPage(call.ctx, params)
		if err != nil {
			return nil, err
		}
		// A late-arriving cancellation must not discard a good response.
		s.store(context.WithoutCancel(call.ctx), key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return listview.ListResult[T]{}, ctx.Err()
	case r := <-ch:
		canceled = false
		if r.Err != nil {
			return listview.ListResult[T]{}, r.Err
		}
		return r.Val.(listview.ListResult[T]), nil
	}
}

// join registers the caller as a waiter on the origin call for key, creating
// its context when no call is in flight. The context carries ctx's values
// but not its cancellation.
func (s *CachedSource[T]) join(ctx context.Context, key string) *sharedFetch {
	s.mu.Lock()
	defer s.mu.Unlock()
	call, ok := s.inflight[key]
	if !ok {
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		call = &sharedFetch{ctx: callCtx, cancel: cancel}
		s.inflight[key] = call
	}
	call.waiters++
	return call
}

// leave drops a waiter. When the last waiter leaves, the origin call is
// cancelled and forgotten so the next caller starts a fresh one.
func (s *CachedSource[T]) leave(key string, call *sharedFetch, canceled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call.waiters--
	if call.waiters > 0 {
		return
	}
	if s.inflight[key] == call {
		delete(s.inflight, key)
	}
	s.group.Forget(key)
	call.cancel()
	if canceled {
		s.logger.Debug("list fetch abandoned by every caller", "key", key)
	}
}

// Invalidate drops the cached response for params from every tier.
func (s *CachedSource[T]) Invalidate(ctx context.Context, params listview.QueryParams) {
	key := s.Key(params)
	for _, tier := range []core.CacheRepository{s.tiers.Local, s.tiers.Redis} {
		if tier == nil {
			continue
		}
		if _, err := tier.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "list cache delete failed", "key", key, "error", err)
		}
	}
}

func (s *CachedSource[T]) lookup(ctx context.Context, key string) (listview.ListResult[T], bool) {
	if res, ok := s.get(ctx, s.tiers.Local, metrics.TierLocal, key); ok {
		return res, true
	}
	res, ok := s.get(ctx, s.tiers.Redis, metrics.TierRedis, key)
	if ok && s.tiers.Local != nil {
		if b, err := json.Marshal(res); err == nil {
			s.set(ctx, s.tiers.Local, key, b, s.cfg.LocalTTL)
		}
	}
	return res, ok
}

func (s *CachedSource[T]) get(ctx context.Context, tier core.CacheRepository, name, key string) (listview.ListResult[T], bool) {
	var res listview.ListResult[T]
	if tier == nil {
		return res, false
	}
	b, err := tier.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "list cache read failed", "tier", name, "key", key, "error", err)
		metrics.EmitCacheLookup(s.sink, s.cfg.Name, name, false)
		return res, false
	}
	if b == nil {
		metrics.EmitCacheLookup(s.sink, s.cfg.Name, name, false)
		return res, false
	}
	if err := json.Unmarshal(b, &res); err != nil {
		s.logger.WarnContext(ctx, "discarding undecodable list cache entry", "tier", name, "key", key, "error", err)
		if _, err := tier.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "list cache delete failed", "tier", name, "key", key, "error", err)
		}
		metrics.EmitCacheLookup(s.sink, s.cfg.Name, name, false)
		return listview.ListResult[T]{}, false
	}
	if res.Items == nil {
		res.Items = []T{}
	}
	metrics.EmitCacheLookup(s.sink, s.cfg.Name, name, true)
	return res, true
}

func (s *CachedSource[T]) store(ctx context.Context, key string, res listview.ListResult[T]) {
	if s.tiers.Local == nil && s.tiers.Redis == nil {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		s.logger.WarnContext(ctx, "list response not cacheable", "key", key, "error", err)
		return
	}
	s.set(ctx, s.tiers.Redis, key, b, s.cfg.RedisTTL)
	s.set(ctx, s.tiers.Local, key, b, s.cfg.LocalTTL)
}

func (s *CachedSource[T]) set(ctx context.Context, tier core.CacheRepository, key string, b []byte, ttl time.Duration) {
	if tier == nil {
		return
	}
	if err := tier.Set(ctx, key, b, ttl); err != nil {
		s.logger.WarnContext(ctx, "list cache write failed", "key", key, "error", err)
	}
}
