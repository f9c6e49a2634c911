package services

import (
	"sync"

	"weather-analytics/internal/models"
)

// cacheKey identifies a computation by operation and window identity. Two
// windows with the same bounds and length are treated as identical; the
// engine's results depend only on the records themselves.
type cacheKey struct {
	operation string
	firstTS   float64
	lastTS    float64
	count     int
}

// windowKey derives the cache key for an operation over a window.
func windowKey(operation string, records []models.Observation) cacheKey {
	key := cacheKey{operation: operation, count: len(records)}
	if len(records) > 0 {
		key.firstTS = records[0].Timestamp
		key.lastTS = records[len(records)-1].Timestamp
	}
	return key
}

// resultCache is an explicit bounded cache for engine results, keyed by
// (window identity, operation). It lives outside the pure compute functions;
// the engine itself stays stateless. Eviction is oldest-first.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]interface{}
	order    []cacheKey
}

// newResultCache creates a cache holding at most capacity results.
// Capacity <= 0 disables caching.
func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: capacity,
		entries:  make(map[cacheKey]interface{}),
	}
}

func (c *resultCache) get(key cacheKey) (interface{}, bool) {
	if c.capacity <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.entries[key]
	return value, ok
}

func (c *resultCache) put(key cacheKey, value interface{}) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = value

	for len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// len reports the number of cached results.
func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
