package storage

import (
	"sync"
	"time"
)

// cacheEntry holds a cached value with its expiry time.
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryCache implements ReferenceCache with an in-memory map and per-entry
// TTL. Reads take a shared lock; expired entries are removed lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

var _ ReferenceCache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty TTL cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached value for key, or ok=false on miss or expiry.
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Put stores value under key for the given TTL. A non-positive TTL stores
// an already-expired entry, which the next Get removes.
func (c *MemoryCache) Put(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
