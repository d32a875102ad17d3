// Package cache provides a generic in-memory key/value store with a fixed
// time-to-live. Entries expire lazily on lookup or proactively via Sweep.
// There is no size bound; growth is bounded only by the TTL.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a mutex-serialized TTL cache. All operations are safe for
// concurrent use; Get, Put and Sweep are serialized against each other so a
// lookup can never race an insert or removal of the same key.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[K]entry[V]

	// valid reports whether an entry's backing resource still exists. A nil
	// check accepts every entry.
	valid func(V) bool

	// onEvict runs for every entry removed by expiry, sweep or clear. Used to
	// release backing resources such as temp files.
	onEvict func(K, V)

	// now is injectable so expiry can be tested without sleeping.
	now func() time.Time
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithValidity sets a check applied on every lookup and sweep; entries whose
// check fails are treated as absent and removed.
func WithValidity[K comparable, V any](fn func(V) bool) Option[K, V] {
	return func(c *Cache[K, V]) { c.valid = fn }
}

// WithEvictFunc sets a callback invoked for each removed entry.
func WithEvictFunc[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) { c.onEvict = fn }
}

// WithClock overrides the time source. Intended for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) { c.now = now }
}

// New creates a cache whose entries expire ttl after insertion.
func New[K comparable, V any](ttl time.Duration, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		ttl:     ttl,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the live value for key. Expired entries and entries whose
// backing resource is gone are deleted as a side effect and reported absent.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(e) {
		c.evict(key, e)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put inserts or overwrites the value for key, resetting its TTL.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Sweep removes every expired or invalid entry and returns how many were
// removed. Intended to run periodically, independent of lookups.
func (c *Cache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.expired(e) {
			c.evict(key, e)
			removed++
		}
	}
	return removed
}

// Clear removes all entries regardless of age and returns how many were
// removed.
func (c *Cache[K, V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	for key, e := range c.entries {
		c.evict(key, e)
	}
	return removed
}

// Len returns the number of stored entries, including any not yet observed
// to be expired.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// expired must be called with c.mu held.
func (c *Cache[K, V]) expired(e entry[V]) bool {
	if c.now().Sub(e.insertedAt) >= c.ttl {
		return true
	}
	if c.valid != nil && !c.valid(e.value) {
		return true
	}
	return false
}

// evict must be called with c.mu held.
func (c *Cache[K, V]) evict(key K, e entry[V]) {
	delete(c.entries, key)
	if c.onEvict != nil {
		c.onEvict(key, e.value)
	}
}
