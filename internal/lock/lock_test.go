package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	release, ok, err := l.Acquire(ctx, "daily-returns", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "daily-returns", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = l.Acquire(ctx, "other", time.Minute)
	assert.True(t, ok)

	require.NoError(t, release(ctx))
	_, ok, _ = l.Acquire(ctx, "daily-returns", time.Minute)
	assert.True(t, ok)
}

func TestLocalLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &localLocker{leases: map[string]time.Time{}, now: func() time.Time { return clock }}

	stale, ok, _ := l.Acquire(ctx, "job", time.Minute)
	require.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	_, ok, _ = l.Acquire(ctx, "job", time.Minute)
	require.True(t, ok, "expired lease can be taken over")

	// Releasing the stale lease must not free the new holder's lease.
	require.NoError(t, stale(ctx))
	_, ok, _ = l.Acquire(ctx, "job", time.Minute)
	assert.False(t, ok)
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	key := "test-lock-" + uuid.NewString()
	l := New(rdb)

	release, ok, err := l.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release(ctx))
	n, err := rdb.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
