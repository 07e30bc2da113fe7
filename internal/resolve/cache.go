package resolve

import (
	"sync"
	"time"
)

type cacheEntry struct {
	poster  *Poster
	expires time.Time
}

// cache memoizes accepted resolutions by kind and cleaned title. Batches
// routinely repeat titles (season imports, re-runs), and provider answers are
// stable on that time scale.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *cache) get(key string) (*Poster, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.poster, true
}

func (c *cache) set(key string, poster *Poster) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		poster:  poster,
		expires: time.Now().Add(c.ttl),
	}
}
