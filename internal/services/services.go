package services

import (
	"context"
	"errors"
	"time"

	"soulcare/internal/models"
	appredis "soulcare/internal/redis"
	"soulcare/pkg/apperrors"
	"soulcare/pkg/logger"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// RateLimiter records a hit against key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*appredis.RateLimitResult, error)
}

// Notifier fans changes out to live subscribers.
type Notifier interface {
	MessageCreated(msg *models.Message)
	MessageUpdated(msg *models.Message)
	CallUpdated(call *models.Call)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) MessageCreated(*models.Message) {}
func (NopNotifier) MessageUpdated(*models.Message) {}
func (NopNotifier) CallUpdated(*models.Call)       {}

// allow applies limiter when present. Limiter outages fail open so a
// Redis blip does not take chat and calls down with it.
func allow(ctx context.Context, limiter RateLimiter, key, message string) error {
	if limiter == nil {
		return nil
	}
	res, err := limiter.Allow(ctx, key)
	if err != nil {
		logger.WithError(err).WithField("key", key).Warn("Rate limiter unavailable")
		return nil
	}
	if !res.Allowed {
		return apperrors.RateLimited(message)
	}
	return nil
}

// storeError classifies a repository error.
func storeError(err error, notFound, internal string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Internal(internal, err)
}
