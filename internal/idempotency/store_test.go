package idempotency

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	scope, key := "checkout:"+uuid.NewString(), uuid.NewString()

	_, ok, err := s.Recall(ctx, scope, key)
	require.NoError(t, err)
	assert.False(t, ok)

	locked, err := s.TryLock(ctx, scope, key)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = s.TryLock(ctx, scope, key)
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, s.Remember(ctx, scope, key, "order-1"))
	v, ok, err := s.Recall(ctx, scope, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "order-1", v)

	other := uuid.NewString()
	locked, err = s.TryLock(ctx, scope, other)
	require.NoError(t, err)
	require.True(t, locked)
	require.NoError(t, s.Release(ctx, scope, other))
	locked, err = s.TryLock(ctx, scope, other)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	locked, err := s.TryLock(ctx, "a", "k")
	require.NoError(t, err)
	require.True(t, locked)
	require.NoError(t, s.Remember(ctx, "a", "k", "v"))

	now = now.Add(2 * time.Minute)

	_, ok, err := s.Recall(ctx, "a", "k")
	require.NoError(t, err)
	assert.False(t, ok)
	locked, err = s.TryLock(ctx, "a", "k")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	exerciseStore(t, NewRedisStore(rdb, time.Minute))
}
