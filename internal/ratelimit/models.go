// Package ratelimit caps how often one client may call an expensive endpoint.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is set when the request was rejected.
	RetryAfter time.Duration
}

// Store records requests per key over a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Policy is a request budget per window. A zero Limit disables limiting.
type Policy struct {
	Limit  int
	Window time.Duration
}

func (p Policy) Enabled() bool {
	return p.Limit > 0 && p.Window > 0
}
