package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores rendered graphs. Keys come from CacheKey.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a key from the graph fingerprint, the render options
// fingerprint, the facts key and the output format. Every input that changes
// the rendered bytes must be part of the key: the disk layer is shared by
// every process started in the same directory.
func CacheKey(graph, options, facts, format string) string {
	hash := sha256.Sum256([]byte(strings.Join([]string{graph, options, facts, format}, "\x00")))
	return "arrestflow:v2:" + hex.EncodeToString(hash[:])
}

// Nop is a cache that stores nothing, used when caching is disabled
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
