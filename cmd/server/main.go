package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"guardian/internal/app"
	"guardian/internal/platform/config"
	"guardian/internal/platform/httpserver"
	"guardian/internal/platform/logger"
	"guardian/internal/platform/metrics"
	"guardian/internal/ratelimit"
	ratelimitmetrics "guardian/internal/ratelimit/metrics"
	ratelimitmw "guardian/internal/ratelimit/middleware"
	httptransport "guardian/internal/transport/http"
	uploadhandler "guardian/internal/validation/handler"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("guardian server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := app.New(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer engine.Close()

	limiter := ratelimitmw.New(engine.RateLimitStore,
		ratelimit.Policy{Limit: cfg.Server.UploadRateLimit, Window: cfg.Server.UploadRateWindow},
		log,
		ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:       log,
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		EvidenceDir:  cfg.Server.EvidenceDir,
		HealthChecks: engine.HealthChecks,
	}, uploadhandler.New(engine.Service, log, cfg.Server.MaxUploadBytes,
		uploadhandler.WithMiddleware(limiter.RateLimit("upload")),
	))

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "starting guardian", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
