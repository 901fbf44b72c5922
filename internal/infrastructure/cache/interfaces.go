package cache

import (
	"context"
	"time"
)

// Cache is a TTL key-value store for verdicts. Implementations must
// support concurrent readers and last-writer-wins sets; entries past
// their TTL read as absent.
type Cache interface {
	// Get retrieves a value by key, or ErrCacheKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value with a TTL. Zero TTL means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// GetJSON retrieves and unmarshals JSON data.
	GetJSON(ctx context.Context, key string, dest interface{}) error

	// SetJSON marshals and stores JSON data.
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Close releases backend resources.
	Close() error
}

// Decision is the outcome of one rate limiter attempt.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RateLimiter counts attempts per key inside fixed windows. When a
// window expires the counter is reset, not merged; bursts across a
// window boundary are an accepted property of the algorithm.
type RateLimiter interface {
	// Attempt records an attempt for key and reports whether it is
	// allowed under limit within the current window.
	Attempt(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)

	// Reset clears the window for a key.
	Reset(ctx context.Context, key string) error
}

// Key prefixes for consistent cache key naming.
const (
	EmailVerdictPrefix = "cvb:email:"
	PhoneVerdictPrefix = "cvb:phone:"
	RateLimitPrefix    = "cvb:ratelimit:"
)

// ErrCacheKeyNotFound is returned when a cache key doesn't exist or has
// expired; callers cannot distinguish the two cases.
type ErrCacheKeyNotFound struct {
	Key string
}

func (e ErrCacheKeyNotFound) Error() string {
	return "cache key not found: " + e.Key
}
