package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"guardian/internal/ratelimit"
	"guardian/internal/ratelimit/metrics"
	"guardian/pkg/platform/httputil"
	"guardian/pkg/requestcontext"
)

type Middleware struct {
	store   ratelimit.Store
	policy  ratelimit.Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func New(store ratelimit.Store, policy ratelimit.Policy, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		policy: policy,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !policy.Enabled() {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP under the given scope, e.g.
// "upload". Store failures let the request through.
func (m *Middleware) RateLimit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.policy.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.store.Allow(ctx, scope+":"+ip, m.policy.Limit, m.policy.Window)
			if err != nil {
				m.metrics.IncrementDecision("error")
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"request_id", requestcontext.RequestID(ctx),
					"scope", scope,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncrementDecision("rejected")
				m.logger.InfoContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"scope", scope,
					"client_ip", ip,
				)
				writeRateLimitExceeded(w, result)
				return
			}

			m.metrics.IncrementDecision("allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *ratelimit.Result) {
	retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
	httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
		Detail: "Too many uploads from this address. Please try again later.",
	})
}
