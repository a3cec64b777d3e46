package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"guardian/internal/platform/metrics"
	"guardian/internal/platform/middleware"
	"guardian/pkg/platform/httputil"
	"guardian/pkg/platform/middleware/cors"
	"guardian/pkg/platform/middleware/metadata"
	"guardian/pkg/platform/middleware/requestid"
	"guardian/pkg/platform/middleware/requesttime"
)

// Registrar mounts a feature's endpoints.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries the shared plumbing for NewRouter.
type RouterConfig struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	EvidenceDir string
	// HealthChecks are named probes reported by GET /health.
	HealthChecks map[string]func(ctx context.Context) error
}

// NewRouter wires the middleware chain, the platform endpoints and every
// feature handler.
func NewRouter(cfg RouterConfig, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		requesttime.Middleware,
		metadata.ClientMetadata,
		middleware.AccessLog(cfg.Logger, cfg.Metrics),
		chimw.Recoverer,
		cors.AllowAll,
	)

	r.Get("/health", healthHandler(cfg.Logger, cfg.HealthChecks))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.EvidenceDir != "" {
		r.Handle("/evidence/*", http.StripPrefix("/evidence/", http.FileServer(http.Dir(cfg.EvidenceDir))))
	}

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports each dependency as "ok" or "unavailable"; failure
// details go to the log, not the response.
func healthHandler(logger *slog.Logger, checks map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"check", name,
					"error", err,
				)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
