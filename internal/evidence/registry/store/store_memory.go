package store

import (
	"context"
	"sync"
	"time"

	"guardian/internal/evidence/registry"
	"guardian/pkg/platform/sentinel"
)

type cachedRecord struct {
	record   registry.AuthoritativeRecord
	storedAt time.Time
}

// InMemoryCache caches live registry answers in process with TTL expiration.
type InMemoryCache struct {
	mu       sync.RWMutex
	records  map[string]cachedRecord
	cacheTTL time.Duration
	now      func() time.Time
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		records:  make(map[string]cachedRecord),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Save stores a record keyed by identifier. A nil record is a no-op.
func (c *InMemoryCache) Save(_ context.Context, identifier string, record *registry.AuthoritativeRecord) error {
	if record == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[identifier] = cachedRecord{record: *record, storedAt: c.now()}
	return nil
}

// Find returns sentinel.ErrNotFound if the record is absent or older than the TTL.
func (c *InMemoryCache) Find(_ context.Context, identifier string) (*registry.AuthoritativeRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.records[identifier]; ok {
		if c.now().Sub(cached.storedAt) < c.cacheTTL {
			rec := cached.record
			return &rec, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
