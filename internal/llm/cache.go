package llm

import (
	"sync"
	"time"

	"github.com/ordertrail/ordertrail/internal/model"
)

// cacheEntry represents a cached classification verdict.
type cacheEntry struct {
	expiry time.Time
	result model.ClassificationResult
}

// verdictCache provides thread-safe caching of classification verdicts keyed
// by email content hash. Upstream webhook delivery is at-least-once, so the
// same notification is regularly seen more than once; the cache spares a
// second oracle round trip for redeliveries.
type verdictCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newVerdictCache creates a new cache with the specified TTL.
func newVerdictCache(ttl time.Duration) *verdictCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &verdictCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a verdict from the cache if it exists and hasn't expired.
func (c *verdictCache) get(key string) (model.ClassificationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return model.ClassificationResult{}, false
	}

	if time.Now().After(entry.expiry) {
		return model.ClassificationResult{}, false
	}

	return entry.result, true
}

// set stores a verdict in the cache.
func (c *verdictCache) set(key string, result model.ClassificationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result: result,
		expiry: time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *verdictCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *verdictCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *verdictCache) Close() {
	close(c.stopCh)
}
