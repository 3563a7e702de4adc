package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache is a bounded TTL cache for upstream API responses. It is constructed
// explicitly and injected into callers — no module-level singletons — so a
// process owns exactly one and can drop it wholesale.
type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

// New creates a cache holding at most maxCost entries (cost 1 per entry),
// each expiring after ttl.
func New(maxCost int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

// Set stores val under key with the cache's TTL.
func (c *Cache) Set(key string, val any) { c.c.SetWithTTL(key, val, 1, c.ttl) }

// Del removes key.
func (c *Cache) Del(key string) { c.c.Del(key) }

// Clear drops everything, for explicit invalidation.
func (c *Cache) Clear() { c.c.Clear() }

// Wait blocks until pending writes are applied. Ristretto applies sets
// asynchronously; tests need the barrier.
func (c *Cache) Wait() { c.c.Wait() }
