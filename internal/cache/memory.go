package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-memory verdict cache. Entries never expire; the
// backing store serializes access, so it is safe to share one instance
// across concurrent pipeline invocations.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates an empty verdict cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a verdict by fingerprint
func (c *MemoryCache) Get(fingerprint string) (Verdict, bool) {
	if val, found := c.cache.Get(fingerprint); found {
		return val.(Verdict), true
	}
	return Verdict{}, false
}

// Put stores a verdict under the given fingerprint
func (c *MemoryCache) Put(fingerprint string, v Verdict) {
	c.cache.Set(fingerprint, v, gocache.NoExpiration)
}

// Clear removes every cached verdict
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Size returns the number of cached verdicts
func (c *MemoryCache) Size() int {
	return c.cache.ItemCount()
}
