package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock はテスト用の手動で進める時計です。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestMemory_TTLBoundary はTTL直前の読み取りはヒットし、TTL以降はミスになることを検証します。
func TestMemory_TTLBoundary(t *testing.T) {
	t.Parallel()

	ttls := []time.Duration{time.Millisecond, 30 * time.Second, 5 * time.Minute}
	for _, ttl := range ttls {
		t.Run(ttl.String(), func(t *testing.T) {
			t.Parallel()

			clock := newFakeClock()
			m := NewMemory[int]().WithClock(clock.Now)
			m.Set("k", 42)

			clock.Advance(ttl - time.Nanosecond)
			v, ok := m.Get("k", ttl)
			assert.True(t, ok, "read just before ttl should hit")
			assert.Equal(t, 42, v)

			clock.Advance(2 * time.Nanosecond)
			_, ok = m.Get("k", ttl)
			assert.False(t, ok, "read after ttl should miss")
		})
	}
}

// TestMemory_ExactlyAtTTLIsMiss はnow - storedAt == ttl の場合にミスとなることを検証します。
func TestMemory_ExactlyAtTTLIsMiss(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := NewMemory[string]().WithClock(clock.Now)
	m.Set("k", "v")
	clock.Advance(time.Second)

	_, ok := m.Get("k", time.Second)
	assert.False(t, ok)
}

// TestMemory_SetOverwrites はSetが既存エントリを上書きし、保存時刻を更新することを検証します。
func TestMemory_SetOverwrites(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := NewMemory[string]().WithClock(clock.Now)
	m.Set("k", "old")
	clock.Advance(20 * time.Second)
	m.Set("k", "new")
	clock.Advance(20 * time.Second)

	v, ok := m.Get("k", 30*time.Second)
	assert.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, m.Len())
}

// TestMemory_MissingKey は存在しないキーがゼロ値とfalseを返すことを検証します。
func TestMemory_MissingKey(t *testing.T) {
	t.Parallel()

	m := NewMemory[*int]()
	v, ok := m.Get("absent", time.Minute)
	assert.False(t, ok)
	assert.Nil(t, v)
}

// TestMemory_StaleEntriesAreNotEvicted は期限切れエントリが上書きされるまで保持されることを検証します。
func TestMemory_StaleEntriesAreNotEvicted(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := NewMemory[int]().WithClock(clock.Now)
	m.Set("a", 1)
	clock.Advance(time.Hour)

	_, ok := m.Get("a", time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())

	// a longer ttl still sees it
	v, ok := m.Get("a", 2*time.Hour)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestMemory_Clear(t *testing.T) {
	t.Parallel()

	m := NewMemory[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Clear()

	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("a", time.Hour)
	assert.False(t, ok)
}
