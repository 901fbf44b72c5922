package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadvault/contact-verify-backend/internal/infrastructure/cache"
	"github.com/leadvault/contact-verify-backend/internal/metrics"
	"github.com/leadvault/contact-verify-backend/internal/service/verification"
)

// RouterConfig holds the HTTP surface configuration.
type RouterConfig struct {
	RateLimitPerMinute int
	Logger             *slog.Logger
	Registry           *metrics.Registry
}

// NewRouter builds the API routes with the standard middleware chain.
// Rate limiting sits in front of the validation endpoints only; health
// and metrics are never throttled.
func NewRouter(service verification.Service, limiter cache.RateLimiter, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 10
	}

	handlers := NewHandlers(service, cfg.Logger)

	rateLimited := RateLimitMiddleware(limiter, RateLimitConfig{
		Limit:  cfg.RateLimitPerMinute,
		Window: time.Minute,
	}, cfg.Registry)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/validations/email", rateLimited(http.HandlerFunc(handlers.ValidateEmail)))
	mux.Handle("POST /api/v1/validations/phone", rateLimited(http.HandlerFunc(handlers.ValidatePhone)))
	mux.HandleFunc("GET /healthz", handlers.Health)
	mux.HandleFunc("GET /readyz", handlers.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	return Chain(mux,
		SecurityHeadersMiddleware(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(cfg.Logger),
		MetricsMiddleware(cfg.Registry),
	)
}
