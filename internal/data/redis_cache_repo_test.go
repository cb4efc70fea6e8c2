package data

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandboxops/console/internal/testutil"
)

func TestRedisCacheRepo_Set_Get_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()
	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		key := "console:list:users:-"
		value := []byte(`{"items":[]}`)
		ttl := 5 * time.Minute

		require.NoError(t, repo.Set(ctx, key, value, ttl))

		result, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, result)

		actualTTL := client.TTL(ctx, key).Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("get non-existent key", func(t *testing.T) {
		result, err := repo.Get(ctx, "console:list:missing:-")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("delete existing key", func(t *testing.T) {
		key := "console:list:vms:page=2"
		require.NoError(t, repo.Set(ctx, key, []byte("to be deleted"), time.Minute))

		deleted, err := repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		result, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("delete non-existent key", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "console:list:missing:-")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("expired key reads as missing", func(t *testing.T) {
		key := "console:list:short:-"
		require.NoError(t, repo.Set(ctx, key, []byte("x"), 50*time.Millisecond))
		time.Sleep(120 * time.Millisecond)

		result, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("health check", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_Validation(t *testing.T) {
	repo := NewRedisCacheRepo(nil)
	ctx := context.Background()

	err := repo.Set(ctx, "", []byte("v"), time.Minute)
	require.ErrorIs(t, err, errEmptyKey)

	_, err = repo.Get(ctx, "")
	require.ErrorIs(t, err, errEmptyKey)

	_, err = repo.Delete(ctx, "")
	require.ErrorIs(t, err, errEmptyKey)

	_, err = repo.Purge(ctx, "", false)
	require.Error(t, err)
}

func TestRedisCacheRepo_Purge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()
	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	for i := range 230 {
		require.NoError(t, repo.Set(ctx, fmt.Sprintf("console:list:tasks:page=%d", i), []byte("x"), time.Minute))
	}
	require.NoError(t, repo.Set(ctx, "console:list:users:-", []byte("x"), time.Minute))

	n, err := repo.Purge(ctx, "console:list:tasks:*", true)
	require.NoError(t, err)
	assert.Equal(t, 230, n)
	assert.EqualValues(t, 231, client.DBSize(ctx).Val())

	n, err = repo.Purge(ctx, "console:list:tasks:*", false)
	require.NoError(t, err)
	assert.Equal(t, 230, n)

	left, err := repo.Get(ctx, "console:list:users:-")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), left)

	n, err = repo.Purge(ctx, "console:list:tasks:*", false)
	require.NoError(t, err)
	assert.Zero(t, n)
}
