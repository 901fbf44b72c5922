package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisRateLimiter implements the same fixed-window algorithm as the
// memory limiter on a shared Redis counter. INCR creates the window
// key; its expiry marks the window boundary.
type redisRateLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisRateLimiter creates a Redis-backed fixed-window rate limiter.
func NewRedisRateLimiter(client *redis.Client, logger *zap.Logger) RateLimiter {
	return &redisRateLimiter{client: client, logger: logger}
}

func (r *redisRateLimiter) Attempt(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	rateKey := RateLimitPrefix + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, rateKey)
	// NX: only the attempt that opens the window sets its expiry.
	pipe.ExpireNX(ctx, rateKey, window)
	ttl := pipe.PTTL(ctx, rateKey)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("rate limiter pipeline failed",
			zap.String("key", key),
			zap.Int("limit", limit),
			zap.Duration("window", window),
			zap.Error(err))
		return Decision{}, fmt.Errorf("rate limiter pipeline failed: %w", err)
	}

	count := incr.Val()
	resetAt := time.Now().Add(window)
	if d := ttl.Val(); d > 0 {
		resetAt = time.Now().Add(d)
	}

	if count > int64(limit) {
		r.logger.Debug("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit))
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: limit - int(count),
		ResetAt:   resetAt,
	}, nil
}

func (r *redisRateLimiter) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, RateLimitPrefix+key).Err(); err != nil {
		r.logger.Error("rate limiter reset failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("rate limiter reset failed: %w", err)
	}
	return nil
}
