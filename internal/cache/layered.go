package cache

import (
	"errors"
	"time"
)

// LayeredCache puts a per-process memory layer in front of the shared disk
// directory. A view rendered by an earlier run is read from disk once and
// then served from memory.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache builds the cache used when cache.dir is set
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		// promoted with the memory TTL, not whatever is left on disk
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set writes a render through to disk so other processes can reuse it
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

// Clear empties both layers. `arrestflow cache clear` calls it.
func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
