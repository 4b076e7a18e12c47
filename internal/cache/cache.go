package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores page bodies by URL.
type Cache interface {
	// Get returns the cached body and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type memoryEntry struct {
	value    string
	cachedAt time.Time
	ttl      time.Duration
}

// MemoryCache is an in-process Cache with per-entry TTL.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves a value if present and not expired. Expired entries are removed.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if c.expired(e) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores a value.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{value: value, cachedAt: c.now(), ttl: ttl}
	return nil
}

// CleanExpired removes expired entries and returns how many were removed.
func (c *MemoryCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries, expired or not.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) expired(e memoryEntry) bool {
	return e.ttl > 0 && c.now().Sub(e.cachedAt) > e.ttl
}
