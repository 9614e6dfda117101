package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RateLimitResult describes one limiter decision.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// FixedWindowLimiter counts hits per key in fixed time windows.
type FixedWindowLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewFixedWindowLimiter builds a limiter allowing limit hits per window.
func NewFixedWindowLimiter(client *redis.Client, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if client == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	return &FixedWindowLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

func (l *FixedWindowLimiter) slotKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	slot := l.now().UTC().UnixMilli() / l.window.Milliseconds()
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
}

// Allow records a hit for key and reports whether it is within quota.
// Redis failures are returned so callers can fail closed.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	res, err := fixedWindowScript.Run(ctx, l.client, []string{l.slotKey(key)}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", l.prefix, err)
	}
	count, ttl := res[0], res[1]
	if ttl < 0 {
		ttl = l.window.Milliseconds()
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetIn:   time.Duration(ttl) * time.Millisecond,
	}, nil
}

// Exceeded reports whether key already used its quota, without recording a hit.
func (l *FixedWindowLimiter) Exceeded(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, l.slotKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", l.prefix, err)
	}
	return count >= int64(l.limit), nil
}

// Reset clears the current window for key.
func (l *FixedWindowLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.slotKey(key)).Err()
}
