// Package cache provides bounded memoization for API responses
// to improve performance and reduce external API calls.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU is a thread-safe, fixed-capacity cache that evicts the least recently
// used entry once capacity is exceeded. Entries optionally expire after a TTL;
// a zero TTL keeps them until evicted.
type LRU[K comparable, V any] struct {
	items    *expirable.LRU[K, V]
	capacity int
	ttl      time.Duration
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Size     int           `json:"size"`
	Capacity int           `json:"capacity"`
	TTL      time.Duration `json:"ttl"`
	Hits     uint64        `json:"hits"`
	Misses   uint64        `json:"misses"`
}

// NewLRU creates a cache holding at most capacity entries.
// A capacity below 1 is raised to 1.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &LRU[K, V]{
		items:    expirable.NewLRU[K, V](capacity, nil, ttl),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get returns the cached value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.items.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Add stores a value, evicting the least recently used entry if full.
func (c *LRU[K, V]) Add(key K, value V) {
	c.items.Add(key, value)
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Errors from load are returned as-is and never cached.
func (c *LRU[K, V]) GetOrLoad(key K, load func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err := load()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.Add(key, v)
	return v, false, nil
}

// Contains reports whether key is cached without touching its recency.
func (c *LRU[K, V]) Contains(key K) bool {
	return c.items.Contains(key)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.items.Len()
}

// Purge removes all entries and resets the counters.
func (c *LRU[K, V]) Purge() {
	c.items.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns current usage counters.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Size:     c.items.Len(),
		Capacity: c.capacity,
		TTL:      c.ttl,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}
