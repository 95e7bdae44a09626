package summary

import (
	"sync"
	"time"
)

// DefaultTTL is how long a cached summary is considered fresh.
const DefaultTTL = 5 * time.Minute

// Key identifies one cached month window. Keying per (month, year) keeps a
// request for month M from ever being served month M's neighbour within the
// TTL window.
type Key struct {
	Year  int
	Month int
}

type entry struct {
	value     Summary
	fetchedAt time.Time
}

// Cache is a process-wide, time-boxed memoization of computed summaries.
// It is constructed once at startup and passed to every handler; all state
// sits behind one mutex, so concurrent Get/Put never observe a torn entry.
// Last writer wins on Put, which is acceptable because staleness is bounded
// by the TTL.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[Key]entry
}

// NewCache creates a summary cache. A non-positive ttl falls back to
// DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[Key]entry),
	}
}

// Get returns the cached summary for the window if it is still fresh at now.
// forceRefresh bypasses the cache without clearing it; the caller is expected
// to Put the recomputed value. A miss is a control signal, not an error.
func (c *Cache) Get(year, month int, forceRefresh bool, now time.Time) (Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if forceRefresh {
		return Summary{}, false
	}
	e, ok := c.entries[Key{Year: year, Month: month}]
	if !ok {
		return Summary{}, false
	}
	if now.Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, Key{Year: year, Month: month})
		return Summary{}, false
	}
	return e.value, true
}

// Put overwrites the window's slot unconditionally.
func (c *Cache) Put(year, month int, s Summary, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key{Year: year, Month: month}] = entry{value: s, fetchedAt: now}
}

// Invalidate clears one window immediately. Write paths call this
// synchronously before acknowledging their own write, so stale totals are
// never served after a known change.
func (c *Cache) Invalidate(year, month int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, Key{Year: year, Month: month})
}

// InvalidateAll clears every window.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
}

// CleanExpired removes entries past their TTL and returns how many were
// dropped. Registered with the cache manager's periodic cleanup loop.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Size returns the current number of cached windows.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the configured freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
