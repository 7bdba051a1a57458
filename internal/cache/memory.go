package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds rendered views for the life of the process. It is the
// only layer when no cache directory is configured.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache returns a cache whose entries live for defaultTTL. Expired
// renders are swept every cleanupInterval.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

// Set stores a render. A zero ttl is go-cache's DefaultExpiration, so the
// entry gets the TTL the cache was built with.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear drops every render, for example after the rule file changes
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
