package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, zap.NewNop()), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedisCache(t)

	require.NoError(t, rc.Set(ctx, "key", "value", time.Minute))

	got, err := rc.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}

func TestRedisCache_MissingKey(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedisCache(t)

	_, err := rc.Get(ctx, "absent")
	assert.ErrorAs(t, err, &ErrCacheKeyNotFound{})
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedisCache(t)

	require.NoError(t, rc.Set(ctx, "key", "value", time.Minute))

	mr.FastForward(61 * time.Second)

	_, err := rc.Get(ctx, "key")
	assert.ErrorAs(t, err, &ErrCacheKeyNotFound{})
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedisCache(t)

	require.NoError(t, rc.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, rc.Delete(ctx, "key"))

	_, err := rc.Get(ctx, "key")
	assert.ErrorAs(t, err, &ErrCacheKeyNotFound{})
}

func TestRedisCache_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedisCache(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, rc.SetJSON(ctx, "key", payload{Name: "test", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, rc.GetJSON(ctx, "key", &got))
	assert.Equal(t, payload{Name: "test", Count: 3}, got)
}
