package data

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxops/console/internal/testutil"
)

func TestLocalLRU_SetGetDelete(t *testing.T) {
	c := NewLocalLRU(DefaultLocalLRUConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, c.Set(ctx, "k", []byte("v2"), 0))
	got, _ = c.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, 1, c.Len())

	deleted, err := c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, _ = c.Delete(ctx, "k")
	assert.False(t, deleted)

	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Health(ctx))
}

func TestLocalLRU_ValuesAreCopied(t *testing.T) {
	c := NewLocalLRU(LocalLRUConfig{})
	ctx := context.Background()
	in := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", in, 0))
	in[0] = 'x'

	out, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(out))
	out[1] = 'y'

	again, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestLocalLRU_TTL(t *testing.T) {
	now := testutil.TestTime()
	c := NewLocalLRU(LocalLRUConfig{Capacity: 4, Now: func() time.Time { return now }})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("s"), time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("f"), 0))

	now = now.Add(2 * time.Second)
	got, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, _ = c.Get(ctx, "forever")
	assert.Equal(t, []byte("f"), got)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestLocalLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLocalLRU(LocalLRUConfig{Capacity: 2})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("a"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("b"), 0))
	_, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", []byte("c"), 0))

	b, _ := c.Get(ctx, "b")
	assert.Nil(t, b, "b was least recently used")
	a, _ := c.Get(ctx, "a")
	assert.NotNil(t, a)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
	assert.Equal(t, 2, c.Stats().Capacity)
}

func TestLocalLRU_ByteBudget(t *testing.T) {
	c := NewLocalLRU(LocalLRUConfig{Capacity: 10, MaxBytes: 10})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("aaaa"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("bbbb"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("cccc"), 0))

	a, _ := c.Get(ctx, "a")
	assert.Nil(t, a, "oldest entry evicted to stay within 10 bytes")
	stats := c.Stats()
	assert.Equal(t, 8, stats.Bytes)
	assert.Equal(t, 2, stats.Size)

	require.NoError(t, c.Set(ctx, "huge", make([]byte, 11), 0))
	huge, _ := c.Get(ctx, "huge")
	assert.Nil(t, huge, "values above the budget are not cached")
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Set(ctx, "b", []byte("b"), 0))
	assert.Equal(t, 5, c.Stats().Bytes, "replacing a value releases its old size")
}

func TestLocalLRU_PurgeExpired(t *testing.T) {
	now := testutil.TestTime()
	c := NewLocalLRU(LocalLRUConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("a"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("c"), 0))

	now = now.Add(2 * time.Second)
	assert.Equal(t, 1, c.PurgeExpired())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Stats().Bytes)
}

func TestLocalLRU_SetSweepsPeriodically(t *testing.T) {
	now := testutil.TestTime()
	c := NewLocalLRU(LocalLRUConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "stale", []byte("s"), time.Second))
	now = now.Add(time.Minute)
	require.NoError(t, c.Set(ctx, "fresh", []byte("f"), 0))

	assert.Equal(t, 1, c.Len(), "the expired entry was swept without being read")
	assert.Equal(t, uint64(0), c.Stats().Misses)
}

func TestLocalLRU_EmptyKey(t *testing.T) {
	c := NewLocalLRU(LocalLRUConfig{})
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", nil, 0), errEmptyKey)
	_, err := c.Get(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
	_, err = c.Delete(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestLocalLRU_Concurrent(t *testing.T) {
	c := NewLocalLRU(LocalLRUConfig{Capacity: 16})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k%d", (i+j)%32)
				_ = c.Set(ctx, key, []byte(key), time.Minute)
				_, _ = c.Get(ctx, key)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
