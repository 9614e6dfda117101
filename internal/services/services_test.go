package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"soulcare/internal/models"
	appredis "soulcare/internal/redis"
	"soulcare/pkg/apperrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// steppingClock advances by step on every read.
func steppingClock(start time.Time, step time.Duration) Clock {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

func newLimiter(t *testing.T, limit int, window time.Duration) (*miniredis.Miniredis, *appredis.FixedWindowLimiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := appredis.NewFixedWindowLimiter(client, "test:limit", limit, window)
	require.NoError(t, err)
	return mr, limiter
}

func assertKind(t *testing.T, err error, kind apperrors.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), err.Error())
	if message != "" {
		assert.Equal(t, message, apperrors.Message(err))
	}
}

// recordingNotifier captures fan-out calls.
type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	updated []string
	calls   []string
}

func (n *recordingNotifier) MessageCreated(m *models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, m.ID.Hex())
}

func (n *recordingNotifier) MessageUpdated(m *models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, m.ID.Hex())
}

func (n *recordingNotifier) CallUpdated(c *models.Call) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c.Status)
}

func TestAllowFailsOpenWhenLimiterIsDown(t *testing.T) {
	mr, limiter := newLimiter(t, 1, time.Minute)
	mr.Close()

	assert.NoError(t, allow(context.Background(), limiter, "u1", "slow down"))
}

func TestAllowRejectsOverQuota(t *testing.T) {
	_, limiter := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, allow(ctx, limiter, "u1", "slow down"))
	assertKind(t, allow(ctx, limiter, "u1", "slow down"), apperrors.KindRateLimited, "slow down")
	assert.NoError(t, allow(ctx, nil, "u1", "slow down"))
}
