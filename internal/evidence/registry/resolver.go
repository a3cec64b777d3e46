//go:generate mockgen -source=resolver.go -destination=mocks/registry-mocks.go -package=mocks

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"guardian/internal/evidence/registry/metrics"
	"guardian/pkg/platform/circuit"
	"guardian/pkg/platform/sentinel"
)

// LiveClient queries an external medical registry. Unknown identifiers
// return sentinel.ErrNotFound.
type LiveClient interface {
	Lookup(ctx context.Context, identifier string) (*AuthoritativeRecord, error)
}

// Cache stores live registry answers. Find returns sentinel.ErrNotFound on a miss.
type Cache interface {
	Find(ctx context.Context, identifier string) (*AuthoritativeRecord, error)
	Save(ctx context.Context, identifier string, record *AuthoritativeRecord) error
}

// Resolver answers "what does the registry say about this identifier?".
// Lookup order is fixed: local table, then live registry, then not found.
type Resolver struct {
	local           *LocalTable
	live            LiveClient
	cache           Cache
	breaker         *circuit.Breaker
	evidenceBaseURL string
	logger          *slog.Logger
	metrics         *metrics.Metrics
}

type Option func(*Resolver)

// WithCache puts a cache in front of the live registry.
func WithCache(cache Cache) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// WithBreaker stops calling the live registry after repeated failures.
// While the breaker is open, live lookups fail with sentinel.ErrUnavailable.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Resolver) {
		r.breaker = b
	}
}

// WithEvidenceBaseURL prefixes image evidence URLs, e.g. "http://127.0.0.1:8000".
func WithEvidenceBaseURL(base string) Option {
	return func(r *Resolver) {
		r.evidenceBaseURL = strings.TrimSuffix(base, "/")
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver wires the local table and live client. Either may be nil, in
// which case that source never answers.
func NewResolver(local *LocalTable, live LiveClient, opts ...Option) *Resolver {
	r := &Resolver{
		local:  local,
		live:   live,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the authoritative record and evidence for identifier.
// Not being found anywhere is a normal outcome, not an error; errors are
// reserved for live lookups that failed for other reasons.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (Resolution, error) {
	if rec, ok := r.local.Get(identifier); ok {
		r.metrics.IncrementResolution("local")
		return Resolution{
			Identifier:     identifier,
			Record:         &rec,
			EvidenceType:   EvidenceImage,
			EvidenceSource: rec.Source,
			EvidenceData:   map[string]any{"url": r.evidenceURL(identifier)},
		}, nil
	}

	rec, err := r.lookupLive(ctx, identifier)
	switch {
	case err == nil:
		r.metrics.IncrementResolution("live")
		return Resolution{
			Identifier:     identifier,
			Record:         rec,
			EvidenceType:   EvidenceLiveData,
			EvidenceSource: rec.Source,
			EvidenceData:   rec.AsMap(),
		}, nil
	case errors.Is(err, sentinel.ErrNotFound):
		r.metrics.IncrementResolution("none")
		return notFound(identifier), nil
	default:
		return Resolution{}, fmt.Errorf("resolve %q: %w", identifier, err)
	}
}

func (r *Resolver) lookupLive(ctx context.Context, identifier string) (*AuthoritativeRecord, error) {
	if r.live == nil || identifier == "" {
		return nil, sentinel.ErrNotFound
	}

	if r.cache != nil {
		cached, err := r.cache.Find(ctx, identifier)
		switch {
		case err == nil:
			r.metrics.IncrementCacheResult("hit")
			return cached, nil
		case errors.Is(err, sentinel.ErrNotFound):
			r.metrics.IncrementCacheResult("miss")
		default:
			r.metrics.IncrementCacheResult("error")
			r.logger.WarnContext(ctx, "registry cache read failed",
				"identifier", identifier,
				"error", err,
			)
		}
	}

	if r.breaker != nil && !r.breaker.Allow() {
		return nil, fmt.Errorf("live registry circuit %s open: %w", r.breaker.Name(), sentinel.ErrUnavailable)
	}

	start := time.Now()
	rec, err := r.live.Lookup(ctx, identifier)
	r.metrics.ObserveLiveLatency(time.Since(start))
	r.recordLiveOutcome(ctx, err)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Save(ctx, identifier, rec); err != nil {
			r.logger.WarnContext(ctx, "registry cache write failed",
				"identifier", identifier,
				"error", err,
			)
		}
	}
	return rec, nil
}

// recordLiveOutcome feeds the breaker. Not found is a valid answer and
// caller cancellation says nothing about the registry's health.
func (r *Resolver) recordLiveOutcome(ctx context.Context, err error) {
	if r.breaker == nil {
		return
	}
	switch {
	case err == nil, errors.Is(err, sentinel.ErrNotFound):
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "live registry circuit closed", "breaker", r.breaker.Name())
		}
	case ctx.Err() != nil:
	default:
		if _, change := r.breaker.RecordFailure(); change.Opened {
			r.logger.WarnContext(ctx, "live registry circuit opened",
				"breaker", r.breaker.Name(),
				"error", err,
			)
		}
	}
}

func (r *Resolver) evidenceURL(identifier string) string {
	return r.evidenceBaseURL + "/evidence/" + url.PathEscape(identifier) + ".png"
}
