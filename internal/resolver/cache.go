package resolver

import (
	"sync"
	"time"

	"github.com/localnerve/carddeck/internal/cards"
)

// reportCache is a process-wide TTL map of immutable resolved-report
// snapshots. Entries are replaced wholesale, never mutated; an entry older
// than the TTL is treated as absent (lazy expiry, no sweeper).
type reportCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	report   *cards.ReportWithCards
	storedAt time.Time
}

func newReportCache(ttl time.Duration) *reportCache {
	return &reportCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *reportCache) get(key string) (*cards.ReportWithCards, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.report, true
}

func (c *reportCache) set(key string, report *cards.ReportWithCards) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{report: report, storedAt: time.Now()}
	c.mu.Unlock()
}

func (c *reportCache) drop(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
