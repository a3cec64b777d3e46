package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"guardian/pkg/requestcontext"
)

// ClientMetadata extracts client IP address and User-Agent from the request
// and adds them to the context for use by handlers and services.
// This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Client is a coarse classification of a User-Agent for access logs.
type Client struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// DescribeUserAgent classifies a raw User-Agent header. Empty input yields
// the zero Client.
func DescribeUserAgent(raw string) Client {
	if raw == "" {
		return Client{}
	}
	ua := useragent.New(raw)
	browser, version := ua.Browser()
	if version != "" {
		browser += " " + version
	}
	return Client{
		Browser: browser,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}
