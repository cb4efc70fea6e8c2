// Package testutil provides shared helpers for the console's tests: Redis
// discovery, a fixed clock and a controllable list source.
package testutil

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCandidates are tried in order when REDIS_ADDR is unset: the compose
// service name, then a local server, then the dev compose port mapping.
var redisCandidates = []string{"redis:6379", "localhost:6379", "localhost:56379"}

const redisDBCount = 16

// TestTime is the fixed instant tests use as "now".
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func truthy(key string) bool {
	return slices.Contains([]string{"1", "true", "yes", "y"}, strings.ToLower(os.Getenv(key)))
}

// skipOrFail skips the test unless TEST_REQUIRE_REDIS or TEST_REQUIRE_INFRA
// demands the dependency.
func skipOrFail(t testing.TB, format string, args ...any) {
	t.Helper()
	if truthy("TEST_REQUIRE_REDIS") || truthy("TEST_REQUIRE_INFRA") {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func ping(ctx context.Context, addr string) error {
	c := redis.NewClient(&redis.Options{Addr: addr})
	defer c.Close()
	return c.Ping(ctx).Err()
}

// redisAddr returns the first reachable candidate address.
func redisAddr(t testing.TB) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr, ping(ctx, addr)
	}
	var lastErr error
	for _, addr := range redisCandidates {
		if lastErr = ping(ctx, addr); lastErr == nil {
			return addr, nil
		}
		t.Logf("redis not reachable at %s: %v", addr, lastErr)
	}
	return "", lastErr
}

// reserveDB picks TEST_REDIS_DB, or claims a free DB in 1..15 through a lock
// key in DB 0 released when the test ends. Packages run in parallel so each
// needs its own DB to flush.
func reserveDB(t testing.TB, addr string) int {
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil && db >= 0 {
			return db
		}
		t.Logf("ignoring invalid TEST_REDIS_DB=%q", v)
	}

	meta := redis.NewClient(&redis.Options{Addr: addr})
	defer meta.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	owner := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
	for db := 1; db < redisDBCount; db++ {
		lock := fmt.Sprintf("sandbox-console:testutil:db_lock:%d", db)
		if ok, err := meta.SetNX(ctx, lock, owner, 30*time.Minute).Result(); err != nil || !ok {
			continue
		}
		t.Cleanup(func() {
			c := redis.NewClient(&redis.Options{Addr: addr})
			defer c.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := c.Del(ctx, lock).Err(); err != nil {
				t.Logf("release %s: %v", lock, err)
			}
		})
		return db
	}
	return 1
}

// SetupTestRedis returns a client on a flushed Redis DB reserved for the
// calling test.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr, err := redisAddr(t)
	if err != nil {
		skipOrFail(t, "Redis not available for testing: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: reserveDB(t, addr)})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		_ = client.Close()
		skipOrFail(t, "flush redis at %s: %v", addr, err)
	}
	return client
}
