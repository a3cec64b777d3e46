package store

import (
	"context"
	"sync"
	"time"

	"guardian/internal/ratelimit"
)

// InMemoryStore implements ratelimit.Store with per-key sliding windows.
// Not shared between replicas; use RedisStore for that.
type InMemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*slidingWindow
	lastSweep time.Time
	now       func() time.Time
}

// slidingWindow tracks request timestamps, oldest first.
type slidingWindow struct {
	timestamps []time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

// Allow checks if a request is allowed and records it when it is.
func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*ratelimit.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now, window)

	sw := s.windows[key]
	if sw == nil {
		sw = &slidingWindow{}
		s.windows[key] = sw
	}
	sw.cleanup(now, window)

	if len(sw.timestamps) >= limit {
		resetAt := sw.timestamps[0].Add(window)
		return &ratelimit.Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return &ratelimit.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// sweep drops windows of clients that have gone quiet, at most once per window.
func (s *InMemoryStore) sweep(now time.Time, window time.Duration) {
	if now.Sub(s.lastSweep) < window {
		return
	}
	s.lastSweep = now
	for key, sw := range s.windows {
		sw.cleanup(now, window)
		if len(sw.timestamps) == 0 {
			delete(s.windows, key)
		}
	}
}

// cleanup removes timestamps that fell out of the window.
func (sw *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
