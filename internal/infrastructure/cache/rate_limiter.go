package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// memoryRateLimiter implements fixed-window rate limiting with an
// in-process counter map. The window is reset, never merged: the first
// attempt after resetAt starts a fresh window.
type memoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	logger  *zap.Logger
	now     func() time.Time
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

// NewMemoryRateLimiter creates an in-process fixed-window rate limiter.
func NewMemoryRateLimiter(logger *zap.Logger) RateLimiter {
	return &memoryRateLimiter{
		windows: make(map[string]*rateWindow),
		logger:  logger,
		now:     time.Now,
	}
}

func (m *memoryRateLimiter) Attempt(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}

	if w.count >= limit {
		m.logger.Debug("rate limit exceeded",
			zap.String("key", key),
			zap.Int("limit", limit),
			zap.Time("reset_at", w.resetAt))
		return Decision{Allowed: false, Remaining: 0, ResetAt: w.resetAt}, nil
	}

	w.count++
	return Decision{
		Allowed:   true,
		Remaining: limit - w.count,
		ResetAt:   w.resetAt,
	}, nil
}

func (m *memoryRateLimiter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.windows, key)
	m.mu.Unlock()
	return nil
}
