package registry

import (
	"sync"
	"time"
)

// Cache holds the loaded registry between invocations so warm starts skip
// the catalog fetch. The registry itself is immutable; the cache only guards
// the swap and the expiry clock.
type Cache struct {
	registry    *Registry
	lastUpdated time.Time
	ttl         time.Duration
	mu          sync.RWMutex
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		ttl:         ttl,
		lastUpdated: time.Time{}, // zero time forces the first load
	}
}

// Get returns the cached registry, or nil when empty or expired.
func (c *Cache) Get() *Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.registry == nil || c.isExpired() {
		return nil
	}
	return c.registry
}

// Set replaces the cached registry and resets the expiry clock.
func (c *Cache) Set(r *Registry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.registry = r
	c.lastUpdated = time.Now()
}

func (c *Cache) isExpired() bool {
	return time.Since(c.lastUpdated) > c.ttl
}
