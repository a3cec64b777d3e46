// Package app assembles the validation engine from configuration. Both the
// HTTP server and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"guardian/internal/decision"
	decisionmetrics "guardian/internal/decision/metrics"
	"guardian/internal/evidence/registry"
	registrymetrics "guardian/internal/evidence/registry/metrics"
	"guardian/internal/evidence/registry/store"
	"guardian/internal/platform/config"
	"guardian/internal/platform/postgres"
	"guardian/internal/platform/redis"
	"guardian/internal/ratelimit"
	ratelimitstore "guardian/internal/ratelimit/store"
	"guardian/internal/validation"
	validationmetrics "guardian/internal/validation/metrics"
	"guardian/pkg/platform/circuit"
)

// App holds the wired engine and the resources it owns.
type App struct {
	Service *validation.Service
	Local   *registry.LocalTable
	Live    *registry.LiveRegistry
	Engine  *decision.Engine

	// RateLimitStore shares the Redis connection when one is configured.
	RateLimitStore ratelimit.Store

	// HealthChecks probe the optional external backends.
	HealthChecks map[string]func(context.Context) error

	closers []func()
}

// New loads the truth sources and builds the service. reg may be nil when
// metrics are not exported (CLI runs).
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{HealthChecks: map[string]func(context.Context) error{}}

	local, err := a.loadLocalTable(ctx, cfg.Registry)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Local = local

	cache, err := a.newCache(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	overrides, err := decision.LoadOverrides(cfg.VerdictOverridesPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		regMetrics      *registrymetrics.Metrics
		decMetrics      *decisionmetrics.Metrics
		validateMetrics *validationmetrics.Metrics
	)
	if reg != nil {
		regMetrics = registrymetrics.New(reg)
		decMetrics = decisionmetrics.New(reg)
		validateMetrics = validationmetrics.New(reg)
	}

	a.Live = registry.NewLiveRegistry(nil, cfg.Registry.LiveLatency)
	resolver := registry.NewResolver(local, a.Live,
		registry.WithCache(cache),
		registry.WithBreaker(newLiveBreaker(cfg.Registry)),
		registry.WithEvidenceBaseURL(cfg.Registry.EvidenceBaseURL),
		registry.WithLogger(logger),
		registry.WithMetrics(regMetrics),
	)
	a.Engine = decision.NewEngine(cfg.Policy, overrides)
	a.Service = validation.NewService(resolver, a.Engine,
		validation.WithLogger(logger),
		validation.WithMetrics(validateMetrics),
		validation.WithDecisionMetrics(decMetrics),
	)

	logger.InfoContext(ctx, "validation engine ready",
		"local_records", local.Len(),
		"live_records", len(a.Live.Identifiers()),
		"overrides", overrides.Len(),
		"redis_cache", cfg.Redis.URL != "",
	)
	return a, nil
}

func (a *App) loadLocalTable(ctx context.Context, cfg config.Registry) (*registry.LocalTable, error) {
	if cfg.LocalDSN == "" {
		return registry.LoadLocalTable(cfg.LocalPath)
	}

	pool, err := postgres.Connect(ctx, cfg.LocalDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)
	a.HealthChecks["postgres"] = pool.Ping

	local, err := store.LoadLocalTable(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load local registry from postgres: %w", err)
	}
	return local, nil
}

func (a *App) newCache(ctx context.Context, cfg config.Config) (registry.Cache, error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.RateLimitStore = ratelimitstore.NewInMemoryStore()
		return store.NewInMemoryCache(cfg.Registry.CacheTTL), nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.HealthChecks["redis"] = client.Health
	a.RateLimitStore = ratelimitstore.NewRedisStore(client.Client)
	return store.NewRedisCache(client.Client, cfg.Registry.CacheTTL), nil
}

// Close releases pools and connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// newLiveBreaker guards the live registry. One successful probe after the
// cooldown closes it again.
func newLiveBreaker(cfg config.Registry, opts ...circuit.Option) *circuit.Breaker {
	opts = append([]circuit.Option{
		circuit.WithFailureThreshold(cfg.BreakerThreshold),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(cfg.BreakerCooldown),
	}, opts...)
	return circuit.New("live-registry", opts...)
}
