package httptransport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardian/internal/platform/metrics"
	"guardian/pkg/platform/middleware/requestid"
	"guardian/pkg/testutil"
)

type pingHandler struct{}

func (pingHandler) Register(r chi.Router) {
	r.Post("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
}

func newTestRouter(t *testing.T, checks map[string]func(context.Context) error) http.Handler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MCI-101010.png"), []byte("png"), 0o600))

	reg := prometheus.NewRegistry()
	return NewRouter(RouterConfig{
		Logger:       slog.New(slog.DiscardHandler),
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		EvidenceDir:  dir,
		HealthChecks: checks,
	}, pingHandler{})
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t, nil)

	t.Run("health", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get(requestid.Header))
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("evidence files", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/evidence/MCI-101010.png"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "png", rr.Body.String())

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/evidence/missing.png"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("feature handlers are mounted", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/ping"))
		testutil.AssertStatus(t, rr, http.StatusAccepted)
	})

	t.Run("metrics exposes request counters", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Contains(t, rr.Body.String(), "guardian_http_requests_total")
	})
}

func TestHealthDegraded(t *testing.T) {
	router := newTestRouter(t, map[string]func(context.Context) error{
		"redis":    func(context.Context) error { return errors.New("connection refused") },
		"postgres": func(context.Context) error { return nil },
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	assert.JSONEq(t, `{"status":"degraded","checks":{"redis":"unavailable","postgres":"ok"}}`, rr.Body.String())
}

func TestHealthLogsCheckFailure(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	router := NewRouter(RouterConfig{
		Logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		HealthChecks: map[string]func(context.Context) error{
			"redis": func(context.Context) error { return errors.New("dial tcp 10.0.0.5:6379: connection refused") },
		},
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	assert.NotContains(t, rr.Body.String(), "10.0.0.5", "error details stay out of the response")
	assert.Contains(t, logs.String(), `"msg":"health check failed"`)
	assert.Contains(t, logs.String(), "connection refused")
}
