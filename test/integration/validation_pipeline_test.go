package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
	"github.com/leadvault/contact-verify-backend/internal/infrastructure/cache"
	vservice "github.com/leadvault/contact-verify-backend/internal/service/verification"
	"github.com/leadvault/contact-verify-backend/internal/service/verification/providers"
)

// startRedis runs a Redis container for the test and returns a connected
// client.
func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := redis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestValidationPipelineWithRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	logger := zap.NewNop()
	client := startRedis(t)
	store := cache.NewRedisCache(client, logger)

	var providerCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"format_valid": true,
			"mx_found":     true,
			"smtp_check":   true,
			"score":        0.91,
		})
	}))
	t.Cleanup(server.Close)

	emailProvider := providers.NewEmailProvider(providers.EmailConfig{
		BaseURL:   server.URL,
		APIKey:    "integration-key",
		BlockRole: true,
	}, logger)
	phoneProvider := providers.NewPhoneProvider(providers.PhoneConfig{
		BaseURL:       server.URL,
		APIKey:        "",
		AllowLandline: true,
	}, logger)

	denylist := vservice.NewDenylist([]string{"test"}, []string{"mailinator.com"})
	fallback := vservice.NewFallbackResolver(vservice.FallbackConfig{
		TrustedDomains: []string{"gmail.com"},
		EnableTrusted:  true,
		EnableMX:       false,
	}, nil, logger)

	svc := vservice.NewService(vservice.Config{CacheTTL: time.Minute},
		store, emailProvider, phoneProvider, denylist, fallback, nil, logger)

	t.Run("verdict is cached across calls", func(t *testing.T) {
		first := svc.ValidateEmail(ctx, "alice@company.com")
		require.Equal(t, verification.ValidityValid, first.Validity)
		require.Equal(t, verification.ConfidenceGood, first.Confidence)

		second := svc.ValidateEmail(ctx, "ALICE@company.com")
		assert.Equal(t, first, second)
		assert.Equal(t, int64(1), providerCalls.Load())

		// The verdict lives under the expected key with a TTL.
		ttl, err := client.TTL(ctx, cache.EmailVerdictPrefix+"alice@company.com").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("denylist rejects before provider and cache", func(t *testing.T) {
		before := providerCalls.Load()
		verdict := svc.ValidateEmail(ctx, "test.user@company.com")
		assert.Equal(t, verification.ValidityInvalid, verdict.Validity)
		assert.Equal(t, verification.ReasonBlockedPrefix, verdict.Reason)
		assert.Equal(t, before, providerCalls.Load())

		exists, err := client.Exists(ctx, cache.EmailVerdictPrefix+"test.user@company.com").Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("unconfigured phone provider soft-passes and caches", func(t *testing.T) {
		verdict := svc.ValidatePhone(ctx, "(415) 555-2671", "US")
		assert.Equal(t, verification.ValidityUnknown, verdict.Validity)
		assert.Equal(t, verification.ReasonProviderMissing, verdict.Reason)

		exists, err := client.Exists(ctx, cache.PhoneVerdictPrefix+"US:4155552671").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("trusted domain upgrade when provider unconfigured", func(t *testing.T) {
		unconfigured := providers.NewEmailProvider(providers.EmailConfig{
			BaseURL: server.URL,
		}, logger)
		svc2 := vservice.NewService(vservice.Config{CacheTTL: time.Minute},
			store, unconfigured, phoneProvider, denylist, fallback, nil, logger)

		verdict := svc2.ValidateEmail(ctx, "bob@gmail.com")
		assert.Equal(t, verification.ValidityValid, verdict.Validity)
		assert.Equal(t, verification.ReasonProvisionalTrusted, verdict.Reason)
		assert.Equal(t, verification.ConfidenceGood, verdict.Confidence)
	})
}

func TestRedisRateLimiterWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client := startRedis(t)
	limiter := cache.NewRedisRateLimiter(client, zap.NewNop())

	for i := 0; i < 5; i++ {
		d, err := limiter.Attempt(ctx, "client-a", 5, 2*time.Second)
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}

	d, err := limiter.Attempt(ctx, "client-a", 5, 2*time.Second)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// A fresh window opens after the boundary passes.
	time.Sleep(2100 * time.Millisecond)
	d, err = limiter.Attempt(ctx, "client-a", 5, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
