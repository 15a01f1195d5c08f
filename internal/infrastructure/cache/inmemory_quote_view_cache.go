package cache

import (
	"context"
	"sync"
	"time"

	appbudget "github.com/quoteflow/backend/internal/application/budget"
)

// InMemoryQuoteViewCache implements QuoteViewCache with a local map.
// Suitable for single-instance deployments and tests.
type InMemoryQuoteViewCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type inMemoryEntry struct {
	view      appbudget.PublicQuoteView
	expiresAt time.Time
}

// NewInMemoryQuoteViewCache creates an in-memory quote view cache
func NewInMemoryQuoteViewCache(ttl time.Duration) *InMemoryQuoteViewCache {
	return &InMemoryQuoteViewCache{
		entries: make(map[string]inMemoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached view, or (nil, nil) on a miss
func (c *InMemoryQuoteViewCache) Get(_ context.Context, token string) (*appbudget.PublicQuoteView, error) {
	c.mu.RLock()
	entry, ok := c.entries[token]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, nil
	}
	view := entry.view
	return &view, nil
}

// Set stores the view under the token with the configured TTL
func (c *InMemoryQuoteViewCache) Set(_ context.Context, token string, view *appbudget.PublicQuoteView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = inMemoryEntry{view: *view, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops the cached view for a token
func (c *InMemoryQuoteViewCache) Invalidate(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	return nil
}

var _ QuoteViewCache = (*InMemoryQuoteViewCache)(nil)
