package data

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sandboxops/console/internal/core"
)

var _ core.CacheRepository = (*LocalLRU)(nil)

const (
	defaultLRUCapacity = 256
	defaultLRUMaxBytes = 8 << 20
	// sweepInterval is how often Set also drops expired entries.
	sweepInterval = 30 * time.Second
)

// LocalLRU is the in-process list cache tier. It is bounded both by entry
// count and by the total size of stored values; the least recently used
// entries go first. Expired entries are dropped when read, by PurgeExpired,
// and by a sweep Set runs at most every 30s.
type LocalLRU struct {
	capacity int
	maxBytes int
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // of *lruEntry, most recently used at the front
	index map[string]*list.Element
	bytes int
	swept time.Time
	stats LocalLRUStats
}

type lruEntry struct {
	key     string
	value   []byte
	expires time.Time
}

func (e *lruEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

type LocalLRUConfig struct {
	// Capacity caps the number of entries. Defaults to 256.
	Capacity int
	// MaxBytes caps the summed value sizes. Defaults to 8 MiB.
	MaxBytes int
	Now      func() time.Time
}

func DefaultLocalLRUConfig() LocalLRUConfig {
	return LocalLRUConfig{Capacity: defaultLRUCapacity, MaxBytes: defaultLRUMaxBytes, Now: time.Now}
}

func NewLocalLRU(cfg LocalLRUConfig) *LocalLRU {
	c := &LocalLRU{
		capacity: cfg.Capacity,
		maxBytes: cfg.MaxBytes,
		now:      cfg.Now,
		order:    list.New(),
	}
	if c.capacity <= 0 {
		c.capacity = defaultLRUCapacity
	}
	if c.maxBytes <= 0 {
		c.maxBytes = defaultLRUMaxBytes
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.index = make(map[string]*list.Element, c.capacity)
	return c
}

// Get returns a copy of the value, or nil when absent or expired.
func (c *LocalLRU) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok && el.Value.(*lruEntry).expired(c.now()) {
		c.unlink(el)
		ok = false
	}
	if !ok {
		c.stats.Misses++
		return nil, nil
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return slices.Clone(el.Value.(*lruEntry).value), nil
}

// Set stores a copy of value. ttl <= 0 keeps it until evicted. A value larger
// than MaxBytes is not cached.
func (c *LocalLRU) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.unlink(el)
	}
	if len(value) > c.maxBytes {
		return nil
	}

	now := c.now()
	if now.Sub(c.swept) >= sweepInterval {
		c.sweep(now)
	}
	ent := &lruEntry{key: key, value: slices.Clone(value)}
	if ttl > 0 {
		ent.expires = now.Add(ttl)
	}
	c.index[key] = c.order.PushFront(ent)
	c.bytes += len(ent.value)

	for c.order.Len() > c.capacity || c.bytes > c.maxBytes {
		c.unlink(c.order.Back())
		c.stats.Evictions++
	}
	return nil
}

func (c *LocalLRU) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok {
		c.unlink(el)
	}
	return ok, nil
}

// PurgeExpired drops every expired entry and returns how many went.
func (c *LocalLRU) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweep(c.now())
}

// sweep unlinks expired entries; c.mu must be held.
func (c *LocalLRU) sweep(now time.Time) int {
	c.swept = now
	n := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*lruEntry).expired(now) {
			c.unlink(el)
			n++
		}
		el = next
	}
	return n
}

func (c *LocalLRU) Health(context.Context) error { return nil }

func (c *LocalLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

type LocalLRUStats struct {
	Hits, Misses, Evictions uint64
	Size, Capacity          int
	Bytes, MaxBytes         int
}

func (c *LocalLRU) Stats() LocalLRUStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size, s.Capacity = c.order.Len(), c.capacity
	s.Bytes, s.MaxBytes = c.bytes, c.maxBytes
	return s
}

// unlink removes el; c.mu must be held.
func (c *LocalLRU) unlink(el *list.Element) {
	ent := c.order.Remove(el).(*lruEntry)
	delete(c.index, ent.key)
	c.bytes -= len(ent.value)
}
