package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestFixedWindowLimiterAllow(t *testing.T) {
	_, client := newTestClient(t)
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", 2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Equal(t, 2, third.Limit)
	assert.Greater(t, third.ResetIn, time.Duration(0))

	other, err := limiter.Allow(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are counted independently")
}

func TestFixedWindowLimiterExceededAndReset(t *testing.T) {
	_, client := newTestClient(t)
	limiter, err := NewFixedWindowLimiter(client, "test:signin", 2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	exceeded, err := limiter.Exceeded(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, exceeded)

	_, _ = limiter.Allow(ctx, "a@b.com")
	_, _ = limiter.Allow(ctx, "a@b.com")

	exceeded, err = limiter.Exceeded(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, exceeded)

	require.NoError(t, limiter.Reset(ctx, "a@b.com"))
	exceeded, err = limiter.Exceeded(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestFixedWindowLimiterReturnsRedisErrors(t *testing.T) {
	mr, client := newTestClient(t)
	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", 1, time.Second)
	require.NoError(t, err)

	mr.Close()
	_, err = limiter.Allow(context.Background(), "u1")
	assert.Error(t, err)
}

func TestNewFixedWindowLimiterValidation(t *testing.T) {
	_, client := newTestClient(t)

	_, err := NewFixedWindowLimiter(nil, "p", 1, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(client, "p", 0, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindowLimiter(client, "p", 1, 0)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "soulcare:events:chat", Key("soulcare", "events", "chat"))
}
