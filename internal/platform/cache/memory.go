// Package cache provides the two cache tiers used by the market data providers:
// an in-process TTL map and an optional Redis tier shared across instances.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value together with the time it was stored.
type Entry[T any] struct {
	Data     T         `json:"data"`
	StoredAt time.Time `json:"stored_at"`
}

// Memory is a string-keyed memoization map. Staleness is decided by the
// caller-supplied TTL on each read; entries are never evicted, only
// overwritten or cleared. The key space (symbols x timeframes) is small and
// bounded by the process lifetime.
type Memory[T any] struct {
	mu    sync.Mutex
	items map[string]Entry[T]
	now   func() time.Time
}

// NewMemory creates an empty Memory cache using the wall clock.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{
		items: make(map[string]Entry[T]),
		now:   time.Now,
	}
}

// WithClock replaces the clock used for staleness checks. Intended for tests.
func (m *Memory[T]) WithClock(now func() time.Time) *Memory[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

// Get returns the stored value only if now - storedAt < ttl.
// A stale or absent key is a miss, not an error.
func (m *Memory[T]) Get(key string, ttl time.Duration) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok || m.now().Sub(e.StoredAt) >= ttl {
		var zero T
		return zero, false
	}
	return e.Data, true
}

// Set stores value under key, overwriting any previous entry.
func (m *Memory[T]) Set(key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = Entry[T]{Data: value, StoredAt: m.now()}
}

// SetEntry stores a pre-stamped entry, keeping its original StoredAt.
func (m *Memory[T]) SetEntry(key string, e Entry[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = e
}

// Clear drops every entry.
func (m *Memory[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]Entry[T])
}

// Len reports the number of stored entries, fresh or stale.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Now returns the cache's current time.
func (m *Memory[T]) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}
