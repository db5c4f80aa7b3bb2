package ratelimit

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 3, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	l := New(store, 3, 15*time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-i, res.Remaining)
		assert.Equal(t, time.Date(2025, 1, 1, 10, 15, 0, 0, time.UTC), res.Reset)
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	other, err := l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	now = now.Add(12 * time.Minute)
	res, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
}

func TestLimiter_FailsOpen(t *testing.T) {
	l := New(failingStore{}, 1, time.Minute)
	res, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryStore_Sweeps(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	_, _ = s.Incr(context.Background(), "a", time.Second)
	now = now.Add(2 * time.Second)
	_, _ = s.Incr(context.Background(), "b", time.Second)

	assert.Len(t, s.counters, 1)
}

func TestMemoryStore_SweepsOncePerWindow(t *testing.T) {
	start := time.Now()
	now := start
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	_, _ = s.Incr(context.Background(), "a", 10*time.Second)
	assert.Equal(t, start, s.swept)

	now = start.Add(5 * time.Second)
	_, _ = s.Incr(context.Background(), "b", 10*time.Second)
	assert.Equal(t, start, s.swept, "new keys inside the window do not walk the map")

	now = start.Add(11 * time.Second)
	_, _ = s.Incr(context.Background(), "c", 10*time.Second)
	assert.Equal(t, now, s.swept)
	assert.Len(t, s.counters, 2, "a expired, b still live")
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	_, err := NewRedisStore(client).Incr(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("TABLIYA_TEST_REDIS")
	if addr == "" {
		t.Skip("TABLIYA_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()

	key := "ratelimit:test:" + time.Now().Format(time.RFC3339Nano)
	s := NewRedisStore(client)

	n, err := s.Incr(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Incr(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ttl, err := client.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
