package cache

import (
	"context"
	"time"
)

// TTLs per data kind.
const (
	QuoteTTL      = 30 * time.Second
	SearchTTL     = 5 * time.Minute
	HistoricalTTL = 60 * time.Second
)

// Tiered reads the in-process tier first and falls back to Redis. A Redis hit
// back-fills memory with the entry's original timestamp, so both tiers agree
// on when the value goes stale.
type Tiered[T any] struct {
	local  *Memory[T]
	remote *Redis[T]
	ttl    time.Duration
}

// NewTiered combines the two tiers with a single TTL. remote may be nil.
func NewTiered[T any](local *Memory[T], remote *Redis[T], ttl time.Duration) *Tiered[T] {
	if local == nil {
		local = NewMemory[T]()
	}
	return &Tiered[T]{local: local, remote: remote, ttl: ttl}
}

// TTL returns the staleness bound of this cache.
func (t *Tiered[T]) TTL() time.Duration {
	return t.ttl
}

// Get returns a fresh value from either tier.
func (t *Tiered[T]) Get(ctx context.Context, key string) (T, bool) {
	if v, ok := t.local.Get(key, t.ttl); ok {
		return v, true
	}

	var zero T
	if !t.remote.Enabled() {
		return zero, false
	}
	e, ok := t.remote.Get(ctx, key)
	if !ok || t.local.Now().Sub(e.StoredAt) >= t.ttl {
		return zero, false
	}
	t.local.SetEntry(key, e)
	return e.Data, true
}

// Set writes value to both tiers.
func (t *Tiered[T]) Set(ctx context.Context, key string, value T) {
	e := Entry[T]{Data: value, StoredAt: t.local.Now()}
	t.local.SetEntry(key, e)
	if t.remote.Enabled() {
		t.remote.Set(ctx, key, e, t.ttl)
	}
}

// Clear drops the in-process tier and, best effort, the Redis namespace.
func (t *Tiered[T]) Clear(ctx context.Context) error {
	t.local.Clear()
	if t.remote.Enabled() {
		return t.remote.Clear(ctx)
	}
	return nil
}
