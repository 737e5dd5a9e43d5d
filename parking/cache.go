// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

package parking

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a deduplicated result set stays reusable.
const DefaultCacheTTL = time.Hour

// DefaultCacheEntries bounds the number of cached searches held in memory.
const DefaultCacheEntries = 128

// CacheKey identifies a search area. Coordinates are rounded to 4 decimal
// places (~11m) before keying, so two geodetically close geocode results for
// the same place text only share an entry when they round identically.
type CacheKey string

// NewCacheKey builds the key for a resolved center and radius.
func NewCacheKey(lat, lng, radiusKm float64) CacheKey {
	return CacheKey(fmt.Sprintf("%.4f_%.4f_%g", lat, lng, radiusKm))
}

type cacheEntry struct {
	spots     []Spot
	createdAt time.Time
}

// Cache memoizes deduplicated, pre-filter spot sets per search area. Entries
// expire lazily after the TTL; the entry count is bounded and the oldest
// entry is evicted on overflow. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[CacheKey]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewCache returns a cache with the default TTL and capacity.
func NewCache() *Cache {
	return NewCacheWithClock(DefaultCacheTTL, DefaultCacheEntries, time.Now)
}

// NewCacheWithClock injects the clock, TTL and capacity. Used by tests and
// by callers that need different retention.
func NewCacheWithClock(ttl time.Duration, maxEntries int, now func() time.Time) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}

	return &Cache{
		entries:    make(map[CacheKey]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

// Lookup returns the cached spot set for the key if present and fresh.
func (c *Cache) Lookup(key CacheKey) ([]Spot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.createdAt) >= c.ttl {
		delete(c.entries, key)

		return nil, false
	}

	return entry.spots, true
}

// Store saves the spots for the key, overwriting unconditionally.
func (c *Cache) Store(key CacheKey, spots []Spot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.entries[key] = cacheEntry{spots: spots, createdAt: c.now()}
}

// Len reports the number of entries currently held, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey CacheKey
		oldestAt  time.Time
		found     bool
	)

	for key, entry := range c.entries {
		if !found || entry.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.createdAt
			found = true
		}
	}

	if found {
		delete(c.entries, oldestKey)
	}
}
