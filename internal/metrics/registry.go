package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the validation-domain metrics for the application.
type Registry struct {
	meter metric.Meter

	VerdictCounter     metric.Int64Counter
	ProviderLatency    metric.Float64Histogram
	ProviderTimeouts   metric.Int64Counter
	FallbackUpgrades   metric.Int64Counter
	CacheHits          metric.Int64Counter
	CacheMisses        metric.Int64Counter
	RateLimitDenials   metric.Int64Counter
	APIRequestDuration metric.Float64Histogram
}

// NewRegistry creates all metric instruments from the global meter
// provider.
func NewRegistry() (*Registry, error) {
	meter := otel.Meter("contact-verify-backend")

	r := &Registry{meter: meter}

	var err error
	if r.VerdictCounter, err = meter.Int64Counter("validation.verdicts",
		metric.WithDescription("Verdicts issued, by identifier type and reason code")); err != nil {
		return nil, err
	}
	if r.ProviderLatency, err = meter.Float64Histogram("validation.provider.duration",
		metric.WithDescription("External provider call duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.ProviderTimeouts, err = meter.Int64Counter("validation.provider.timeouts",
		metric.WithDescription("Provider calls that hit the validation timeout")); err != nil {
		return nil, err
	}
	if r.FallbackUpgrades, err = meter.Int64Counter("validation.fallback.upgrades",
		metric.WithDescription("Unknown verdicts upgraded by the fallback resolver")); err != nil {
		return nil, err
	}
	if r.CacheHits, err = meter.Int64Counter("validation.cache.hits",
		metric.WithDescription("Verdict cache hits")); err != nil {
		return nil, err
	}
	if r.CacheMisses, err = meter.Int64Counter("validation.cache.misses",
		metric.WithDescription("Verdict cache misses")); err != nil {
		return nil, err
	}
	if r.RateLimitDenials, err = meter.Int64Counter("validation.ratelimit.denials",
		metric.WithDescription("Requests denied by the client rate limiter")); err != nil {
		return nil, err
	}
	if r.APIRequestDuration, err = meter.Float64Histogram("api.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return r, nil
}

// RecordVerdict counts one issued verdict.
func (r *Registry) RecordVerdict(ctx context.Context, identifierType, reason string) {
	r.VerdictCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("type", identifierType),
			attribute.String("reason", reason),
		))
}

// RecordProviderCall records the latency of one provider round trip.
func (r *Registry) RecordProviderCall(ctx context.Context, provider string, d time.Duration, timedOut bool) {
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	r.ProviderLatency.Record(ctx, d.Seconds(), attrs)
	if timedOut {
		r.ProviderTimeouts.Add(ctx, 1, attrs)
	}
}

// RecordCacheLookup counts a verdict cache hit or miss.
func (r *Registry) RecordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		r.CacheHits.Add(ctx, 1)
	} else {
		r.CacheMisses.Add(ctx, 1)
	}
}
