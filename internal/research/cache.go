package research

import (
	"context"
	"sync"

	"LaunchDigest/internal/domain"
)

// Cache memoizes subject detail for a single run. Population is at-most-once per
// key: concurrent callers for a key that is being filled wait for the first
// caller's result instead of repeating the lookup. Failures are memoized too.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	done   chan struct{}
	detail domain.ServiceDetail
	err    error
}

// NewCache returns an empty run-scoped cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]*cacheEntry{}}
}

// Do returns the detail for key, calling fill only if no caller has populated
// (or is populating) the key yet. The boolean reports a cache hit.
func (c *Cache) Do(ctx context.Context, key string, fill func(context.Context) (domain.ServiceDetail, error)) (domain.ServiceDetail, bool, error) {
	c.mu.Lock()
	if c.entries == nil {
		c.entries = map[string]*cacheEntry{}
	}
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-e.done:
			return e.detail, true, e.err
		case <-ctx.Done():
			return domain.ServiceDetail{}, true, ctx.Err()
		}
	}

	e := &cacheEntry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	defer close(e.done)
	e.detail, e.err = fill(ctx)
	return e.detail, false, e.err
}

// Len reports how many subjects have been populated or are in flight.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
