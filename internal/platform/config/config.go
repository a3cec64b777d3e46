package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"guardian/internal/decision"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Registry Registry
	Redis    RedisConfig
	Policy   decision.Policy

	// VerdictOverridesPath points at an optional YAML override table.
	VerdictOverridesPath string
	LogLevel             string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	EvidenceDir     string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration

	// UploadRateLimit uploads per client IP per UploadRateWindow; 0 disables.
	UploadRateLimit  int
	UploadRateWindow time.Duration
}

// Registry configures the truth sources.
type Registry struct {
	LocalPath       string
	LocalDSN        string
	EvidenceBaseURL string
	LiveLatency     time.Duration
	CacheTTL        time.Duration

	// BreakerThreshold consecutive live failures open the circuit for BreakerCooldown.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// RedisConfig configures the optional live-lookup cache. An empty URL
// disables Redis and the in-memory cache is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RegistryCacheTTL bounds how long live registry answers are reused.
var RegistryCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	p := &parser{}
	policy := decision.DefaultPolicy()

	cfg := Config{
		Server: Server{
			Addr:            p.str("GUARDIAN_ADDR", ":8000"),
			EvidenceDir:     p.str("EVIDENCE_DIR", "mock_data/evidence"),
			MaxUploadBytes:  p.int64("MAX_UPLOAD_BYTES", 10<<20),
			ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),

			UploadRateLimit:  p.int("UPLOAD_RATE_LIMIT", 30),
			UploadRateWindow: p.duration("UPLOAD_RATE_WINDOW", time.Minute),
		},
		Registry: Registry{
			LocalPath:       p.str("LOCAL_REGISTRY_PATH", "mock_data/registry_truth.json"),
			LocalDSN:        os.Getenv("LOCAL_REGISTRY_DSN"),
			EvidenceBaseURL: os.Getenv("EVIDENCE_BASE_URL"),
			LiveLatency:     p.duration("LIVE_REGISTRY_LATENCY", 1200*time.Millisecond),
			CacheTTL:        p.duration("REGISTRY_CACHE_TTL", RegistryCacheTTL),

			BreakerThreshold: p.int("LIVE_REGISTRY_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  p.duration("LIVE_REGISTRY_BREAKER_COOLDOWN", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Policy: decision.Policy{
			VerifiedThreshold:      p.int("VERIFIED_THRESHOLD", policy.VerifiedThreshold),
			AmbiguityThreshold:     p.int("AMBIGUITY_THRESHOLD", policy.AmbiguityThreshold),
			VerifiedConfidence:     p.int("VERIFIED_CONFIDENCE", policy.VerifiedConfidence),
			LicenseMismatchPenalty: p.int("LICENSE_MISMATCH_PENALTY", policy.LicenseMismatchPenalty),
		},
		VerdictOverridesPath: os.Getenv("VERDICT_OVERRIDES_PATH"),
		LogLevel:             p.str("LOG_LEVEL", "info"),
	}

	if err := cfg.Policy.Validate(); err != nil {
		p.errs = append(p.errs, fmt.Errorf("policy: %w", err))
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		p.errs = append(p.errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.Server.MaxUploadBytes))
	}
	if cfg.Server.UploadRateLimit < 0 {
		p.errs = append(p.errs, fmt.Errorf("UPLOAD_RATE_LIMIT must not be negative, got %d", cfg.Server.UploadRateLimit))
	}
	if cfg.Registry.BreakerThreshold <= 0 {
		p.errs = append(p.errs, fmt.Errorf("LIVE_REGISTRY_BREAKER_THRESHOLD must be positive, got %d", cfg.Registry.BreakerThreshold))
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs []error
}

func (p *parser) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) int64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	if d < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: negative duration %s", key, v))
		return fallback
	}
	return d
}
