package redis

import (
	"context"
	"fmt"
	"time"

	"soulcare/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewClient dials Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Key joins a namespace prefix and parts with colons.
func Key(prefix string, parts ...string) string {
	key := prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
