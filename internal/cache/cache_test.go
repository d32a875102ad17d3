package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestGetPutRoundTrip(t *testing.T) {
	c := New[string, int](time.Hour)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// Overwrite is allowed; a key maps to at most one live entry.
	c.Put("k", 7)
	v, ok = c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, c.Len())
}

func TestGetExpiresEntries(t *testing.T) {
	clock := newFakeClock()
	c := New(time.Hour, WithClock[string, string](clock.Now))

	c.Put("k", "v")

	// Just before the TTL the entry is still live.
	clock.Advance(time.Hour - time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	// At exactly the TTL the entry is treated as absent and purged.
	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be gone from internal storage")
}

func TestValidityCheckEvictsOnLookup(t *testing.T) {
	alive := true
	evicted := 0
	c := New(time.Hour,
		WithValidity[string, string](func(string) bool { return alive }),
		WithEvictFunc[string, string](func(string, string) { evicted++ }),
	)

	c.Put("k", "v")
	_, ok := c.Get("k")
	assert.True(t, ok)

	// Backing resource disappears: the entry is absent and deleted.
	alive = false
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 0, c.Len())
}

func TestSweepRemovesExpired(t *testing.T) {
	clock := newFakeClock()
	c := New(time.Hour, WithClock[int, string](clock.Now))

	for i := 0; i < 5; i++ {
		c.Put(i, "old")
	}
	clock.Advance(2 * time.Hour)
	for i := 5; i < 8; i++ {
		c.Put(i, "fresh")
	}

	removed := c.Sweep()
	assert.Equal(t, 5, removed)
	assert.Equal(t, 3, c.Len())

	// A second sweep finds nothing new.
	assert.Equal(t, 0, c.Sweep())
}

func TestClear(t *testing.T) {
	c := New[string, int](time.Hour)
	c.Put("a", 1)
	c.Put("b", 2)

	assert.Equal(t, 2, c.Clear())
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, int](time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Put(key, n)
				c.Get(key)
				if j%25 == 0 {
					c.Sweep()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
