// Package cache provides the in-memory freshness cache for market data.
//
// Entries carry the instant they were stored. A read names the maximum age it
// will accept, so one cache can hold kinds with different freshness windows.
// Stale entries are evicted on read, or in bulk by Sweep.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/marketpulse/internal/common"
)

// Entry is a cached value and the instant it was stored.
type Entry[T any] struct {
	Data      T
	Timestamp time.Time
}

// Cache is a process-lifetime key/value store with per-read freshness.
// The zero value is not usable; create with New.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]Entry[T]
	now     func() time.Time
}

// Option configures a Cache
type Option[T any] func(*Cache[T])

// WithClock replaces time.Now, for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

// New creates an empty cache.
func New[T any](opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		entries: make(map[string]Entry[T]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key if it is no older than maxAge.
// A stale entry is removed and reported as absent.
func (c *Cache[T]) Get(key string, maxAge time.Duration) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !common.IsFresh(e.Timestamp, c.now(), maxAge) {
		delete(c.entries, key)
		return zero, false
	}
	return e.Data, true
}

// Set stores value under key stamped with the current time, replacing any prior entry.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[T]{Data: value, Timestamp: c.now()}
}

// Sweep removes every entry older than maxAge and returns the number removed.
func (c *Cache[T]) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !common.IsFresh(e.Timestamp, now, maxAge) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Purge removes every entry and returns the number removed.
func (c *Cache[T]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]Entry[T])
	return n
}

// Len returns the number of entries, fresh or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the stored keys in sorted order.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
