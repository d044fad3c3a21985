package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client
}

// TestTiered_LocalOnly はRedisなしでメモリ層のみで動作することを検証します。
func TestTiered_LocalOnly(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := NewTiered[int](NewMemory[int]().WithClock(clock.Now), nil, QuoteTTL)
	ctx := context.Background()

	c.Set(ctx, "quote:AAPL", 1)
	v, ok := c.Get(ctx, "quote:AAPL")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clock.Advance(QuoteTTL)
	_, ok = c.Get(ctx, "quote:AAPL")
	assert.False(t, ok)
	assert.Equal(t, QuoteTTL, c.TTL())
}

// TestTiered_BackfillFromRedis は別インスタンスが書き込んだ値をRedisから取得し、メモリ層に補充することを検証します。
func TestTiered_BackfillFromRedis(t *testing.T) {
	t.Parallel()

	rdb := setupTestRedis(t)
	clock := newFakeClock()
	ctx := context.Background()

	writer := NewTiered[string](NewMemory[string]().WithClock(clock.Now), NewRedis[string](rdb, "search", nil), SearchTTL)
	writer.Set(ctx, "search:apple", "AAPL")

	readerMem := NewMemory[string]().WithClock(clock.Now)
	reader := NewTiered[string](readerMem, NewRedis[string](rdb, "search", nil), SearchTTL)

	clock.Advance(time.Minute)
	v, ok := reader.Get(ctx, "search:apple")
	require.True(t, ok)
	assert.Equal(t, "AAPL", v)
	assert.Equal(t, 1, readerMem.Len())

	// back-filled entry keeps the writer's timestamp
	clock.Advance(SearchTTL - time.Minute)
	_, ok = readerMem.Get("search:apple", SearchTTL)
	assert.False(t, ok)
}

// TestTiered_StaleRemoteEntry はRedisに残っていても期限切れのエントリはミスとなることを検証します。
func TestTiered_StaleRemoteEntry(t *testing.T) {
	t.Parallel()

	rdb := setupTestRedis(t)
	clock := newFakeClock()
	ctx := context.Background()

	writer := NewTiered[string](NewMemory[string]().WithClock(clock.Now), NewRedis[string](rdb, "candles", nil), HistoricalTTL)
	writer.Set(ctx, "candles:AAPL:1M", "series")

	reader := NewTiered[string](NewMemory[string]().WithClock(clock.Now), NewRedis[string](rdb, "candles", nil), HistoricalTTL)
	clock.Advance(HistoricalTTL + time.Second)

	_, ok := reader.Get(ctx, "candles:AAPL:1M")
	assert.False(t, ok)
}

// TestTiered_Clear は両方の層が削除されることを検証します。
func TestTiered_Clear(t *testing.T) {
	t.Parallel()

	rdb := setupTestRedis(t)
	ctx := context.Background()
	c := NewTiered[int](nil, NewRedis[int](rdb, "quotes", nil), QuoteTTL)

	c.Set(ctx, "quote:AAPL", 1)
	require.NoError(t, c.Clear(ctx))

	_, ok := c.Get(ctx, "quote:AAPL")
	assert.False(t, ok)
	keys, err := rdb.Keys(ctx, "quotes:*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
