package cache

import (
	"context"
	"sync"
	"time"

	"sentiment-analyzer/backend/internal/nlu"
)

// item is a cached annotation with its expiration
type item struct {
	annotation *nlu.Annotation
	expiration int64
}

func (i item) expired() bool {
	if i.expiration == 0 {
		return false
	}
	return time.Now().UnixNano() > i.expiration
}

// MemoryCache is a thread-safe in-memory annotation cache with
// expiration. It is the fallback when no Redis backend is configured;
// like the burst limiter, its state is process-local.
type MemoryCache struct {
	items    map[string]item
	mu       sync.RWMutex
	ttl      time.Duration
	maxItems int
}

// NewMemoryCache creates an in-memory cache. A cleanup goroutine
// purges expired entries every ttl interval.
func NewMemoryCache(ttl time.Duration, maxItems int) *MemoryCache {
	c := &MemoryCache{
		items:    make(map[string]item),
		ttl:      ttl,
		maxItems: maxItems,
	}

	if ttl > 0 {
		go c.startCleanupTimer()
	}

	return c
}

func (c *MemoryCache) Get(ctx context.Context, text string) (*nlu.Annotation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[Key(text)]
	if !found || it.expired() {
		return nil, false
	}
	return it.annotation, true
}

func (c *MemoryCache) Set(ctx context.Context, text string, annotation *nlu.Annotation) {
	var exp int64
	if c.ttl > 0 {
		exp = time.Now().Add(c.ttl).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	c.items[Key(text)] = item{annotation: annotation, expiration: exp}
}

// evictOldest removes the entry closest to expiry; caller holds the lock
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestExp int64
	for k, it := range c.items {
		if oldestKey == "" || it.expiration < oldestExp {
			oldestKey = k
			oldestExp = it.expiration
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *MemoryCache) startCleanupTimer() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for k, it := range c.items {
			if it.expired() {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
