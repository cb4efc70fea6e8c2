// Package data holds the storage adapters behind the core ports.
package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandboxops/console/internal/core"
)

var _ core.CacheRepository = (*RedisCacheRepo)(nil)

var errEmptyKey = errors.New("key cannot be empty")

const (
	purgeScanCount = 1000
	purgeBatchSize = 100
)

// RedisCacheRepo is the shared list cache tier. The client may be a single
// node, a cluster or a sentinel-backed failover client.
type RedisCacheRepo struct {
	client redis.UniversalClient
}

// NewRedisCacheRepo wraps client.
func NewRedisCacheRepo(client redis.UniversalClient) *RedisCacheRepo {
	return &RedisCacheRepo{client: client}
}

// Set stores value under key for ttl; a ttl of 0 keeps it until evicted.
func (r *RedisCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Get returns nil without error for a missing or expired key.
func (r *RedisCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	b, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

// Delete removes key and reports whether it existed.
func (r *RedisCacheRepo) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del %s: %w", key, err)
	}
	return n > 0, nil
}

// Health pings the server.
func (r *RedisCacheRepo) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Purge deletes every key matching the glob pattern and returns how many
// matched. With dryRun the keys are only counted. On a cluster every master
// is scanned; deletes are batched per node so no DEL spans hash slots.
func (r *RedisCacheRepo) Purge(ctx context.Context, pattern string, dryRun bool) (int, error) {
	if pattern == "" {
		return 0, errors.New("pattern cannot be empty")
	}
	cluster, ok := r.client.(*redis.ClusterClient)
	if !ok {
		return purgeNode(ctx, r.client, pattern, dryRun)
	}

	var (
		mu    sync.Mutex
		total int
	)
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		n, err := purgeNode(ctx, node, pattern, dryRun)
		mu.Lock()
		total += n
		mu.Unlock()
		return err
	})
	return total, err
}

func purgeNode(ctx context.Context, c redis.Cmdable, pattern string, dryRun bool) (int, error) {
	iter := c.Scan(ctx, 0, pattern, purgeScanCount).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if dryRun {
		return len(keys), nil
	}
	for start := 0; start < len(keys); start += purgeBatchSize {
		end := min(start+purgeBatchSize, len(keys))
		// One key per UNLINK keeps cluster nodes from rejecting
		// cross-slot batches; the pipeline still sends them together.
		pipe := c.Pipeline()
		for _, k := range keys[start:end] {
			pipe.Unlink(ctx, k)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return start, fmt.Errorf("redis unlink: %w", err)
		}
	}
	return len(keys), nil
}
