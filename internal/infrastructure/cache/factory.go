package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/leadvault/contact-verify-backend/internal/infrastructure/config"
)

// Manager bundles the verdict cache and rate limiter behind one
// lifecycle. Stores are constructed once at process start and handed to
// the orchestrator by reference, so tests can inject isolated instances
// and production can swap the backend without touching callers.
type Manager struct {
	Cache       Cache
	RateLimiter RateLimiter

	client *redis.Client
	logger *zap.Logger
}

// NewManager creates cache services for the configured backend.
func NewManager(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Cache.Backend {
	case "", "memory":
		logger.Info("cache manager initialized", zap.String("backend", "memory"))
		return &Manager{
			Cache:       NewMemoryCache(logger),
			RateLimiter: NewMemoryRateLimiter(logger),
			logger:      logger,
		}, nil

	case "redis":
		client, err := NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("creating redis client: %w", err)
		}

		logger.Info("cache manager initialized",
			zap.String("backend", "redis"),
			zap.String("addr", cfg.Redis.URL),
			zap.Int("db", cfg.Redis.DB))

		return &Manager{
			Cache:       NewRedisCache(client, logger),
			RateLimiter: NewRedisRateLimiter(client, logger),
			client:      client,
			logger:      logger,
		}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}

// Close releases all backend resources.
func (m *Manager) Close() error {
	if err := m.Cache.Close(); err != nil {
		return err
	}
	// The limiter shares the cache's redis client; nothing else to close.
	return nil
}
