// Package core defines the ports shared by the console's services and its
// storage adapters.
package core

import (
	"context"
	"strings"
	"time"
)

// CacheRepository is a byte cache keyed by string.
// The data layer provides Redis and in-process implementations.
type CacheRepository interface {
	// Get returns the cached value, or nil without error when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the cache backend.
	Health(ctx context.Context) error
}

// ListCacheKey builds the cache key of one list response: the key prefix,
// the source name and the encoded query, joined by colons. An empty query
// maps to "-" so unfiltered lists still get a stable key.
func ListCacheKey(prefix, source, query string) string {
	if query == "" {
		query = "-"
	}
	parts := make([]string, 0, 4)
	if p := strings.Trim(prefix, ":"); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(append(parts, "list", source, query), ":")
}
