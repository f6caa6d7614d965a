// Package viewcache holds derived read views (record lists, per-user
// counters) for a short time so that listing and stats handlers do not hit
// the database on every request. It is a performance optimisation, not a
// correctness mechanism: a stale read of at most one cache generation is
// acceptable, but Invalidate is synchronous, so every read that starts
// after Invalidate returns observes the removal.
package viewcache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is the age after which an entry behaves as a miss.
const DefaultTTL = 600 * time.Second

type Cache struct {
	items *gocache.Cache
}

// New creates a cache with the given TTL. Expired entries are evicted
// lazily on read; no background janitor runs.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		items: gocache.New(ttl, 0),
	}
}

// Get returns the value stored under key, or false if the key is absent
// or its TTL has elapsed.
func (c *Cache) Get(key string) (any, bool) {
	return c.items.Get(key)
}

// Set stores the value under key, overwriting any previous value and
// resetting its insertion timestamp.
func (c *Cache) Set(key string, value any) {
	c.items.SetDefault(key, value)
}

// Invalidate removes every entry whose key contains the given substring.
// This is an O(n) scan over live entries.
func (c *Cache) Invalidate(substring string) {
	for key := range c.items.Items() {
		if strings.Contains(key, substring) {
			c.items.Delete(key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.items.Flush()
}
