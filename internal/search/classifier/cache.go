// internal/search/classifier/cache.go
package classifier

import (
	"context"
	"strings"
	"sync"
	"time"

	"scout-search/internal/search/params"
)

// CacheEntry is a stored parse keyed by normalized query text. Owned
// exclusively by the classifier service; evicted by age, never by size.
type CacheEntry struct {
	Parameters params.SearchParameters `json:"parameters"`
	Confidence float64                 `json:"confidence"`
	Timestamp  time.Time               `json:"timestamp"`
}

// Cache stores successful parses keyed by normalized query text. Entries
// older than the freshness window are treated as absent.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, bool)
	Set(ctx context.Context, key string, entry *CacheEntry)
	Clear(ctx context.Context)
	Close()
}

// NormalizeKey lower-cases and trims query text for cache lookup.
func NormalizeKey(freeText string) string {
	return strings.ToLower(strings.TrimSpace(freeText))
}

// MemoryCache is the owned in-process TTL store. Concurrent reads are safe,
// writes are atomic per key, and a background sweep removes entries older
// than the freshness window.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	ttl     time.Duration

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
	now           func() time.Time
}

// NewMemoryCache constructs the store and starts the periodic sweep. Close
// must be called on shutdown to stop the sweeper.
func NewMemoryCache(ttl, sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries:       make(map[string]*CacheEntry),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
		now:           time.Now,
	}
	go c.sweepLoop()
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.Timestamp) > c.ttl {
		return nil, false
	}

	// Callers sanitize their parse in place. Hand out a copy so concurrent
	// hits for the same key never share backing arrays.
	copied := *entry
	copied.Parameters = entry.Parameters.Clone()
	return &copied, true
}

func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) {
	// The caller keeps mutating its parameters after Set; store a copy.
	stored := *entry
	stored.Parameters = entry.Parameters.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &stored
}

func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CacheEntry)
}

// Close stops the background sweeper. Safe to call more than once.
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// Len reports the current entry count, expired entries included until the
// next sweep.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) sweep() {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.Timestamp.Before(cutoff) {
			delete(c.entries, key)
		}
	}
}
