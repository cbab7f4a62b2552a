// Package cache holds the most recent price quotes fetched by the store.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/finance-portal/internal/models"
)

// entry wraps a quote with expiry and insertion order tracking.
type entry struct {
	quote     models.PriceQuote
	expiry    time.Time
	insertIdx int64
}

func (e entry) expired(now time.Time) bool {
	return !e.expiry.IsZero() && now.After(e.expiry)
}

// QuoteCache keeps the latest quote per asset for the Quote getter.
// Keys are "type:SYMBOL". A quote stays until the next Put for the same key
// supersedes it, unless a TTL or entry bound was configured.
// Thread-safe with sync.RWMutex.
type QuoteCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// New creates a QuoteCache with the given TTL and max entry count.
// A non-positive ttl disables expiry and a non-positive maxEntries means
// unbounded, so New(0, 0) holds every quote until superseded.
func New(ttl time.Duration, maxEntries int) *QuoteCache {
	return &QuoteCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// MakeKey builds a cache key from asset type and symbol.
func MakeKey(typ models.AssetType, symbol string) string {
	return string(typ) + ":" + strings.ToUpper(strings.TrimSpace(symbol))
}

// Get returns a quote if found and not expired.
// Entries written without a TTL have a zero expiry and never expire.
func (c *QuoteCache) Get(typ models.AssetType, symbol string) (models.PriceQuote, bool) {
	key := MakeKey(typ, symbol)

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return models.PriceQuote{}, false
	}

	if e.expired(c.now()) {
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && e2.expired(c.now()) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return models.PriceQuote{}, false
	}

	return e.quote, true
}

// Put stores a quote under its own type and symbol. Evicts the oldest entry
// if at capacity.
func (c *QuoteCache) Put(q models.PriceQuote) {
	key := MakeKey(q.Type, q.Symbol)

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		quote:     q,
		insertIdx: c.nextIdx,
	}
	if c.ttl > 0 {
		e.expiry = c.now().Add(c.ttl)
	}
	c.nextIdx++

	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// Delete drops every cached quote for symbol regardless of type.
func (c *QuoteCache) Delete(symbol string) {
	suffix := ":" + strings.ToUpper(strings.TrimSpace(symbol))

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasSuffix(key, suffix) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of entries, expired or not.
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *QuoteCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
