package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"soulcare/internal/models"
	appredis "soulcare/internal/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func TestBridgeWithoutRedisDeliversLocally(t *testing.T) {
	hub := startHub(t)
	client := attach(t, hub, "u1")
	bridge := NewBridge(hub, nil, nil, "test:events")

	bridge.MessageCreated(&models.Message{ID: primitive.NewObjectID(), Text: "hi"})
	assert.Equal(t, EventMessageCreated, receive(t, client).Type)
}

func TestBridgeFallsBackWhenPublishFails(t *testing.T) {
	hub := startHub(t)
	client := attach(t, hub, "u1")
	bridge := NewBridge(hub, failingPublisher{}, nil, "test:events")

	bridge.MessageUpdated(&models.Message{ID: primitive.NewObjectID(), Likes: 1})
	assert.Equal(t, EventMessageUpdated, receive(t, client).Type)
}

func TestBridgeRoundTripsThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hub := startHub(t)
	caller := attach(t, hub, "u1")
	bystander := attach(t, hub, "u3")

	bridge := NewBridge(hub, appredis.NewPublisher(rdb), appredis.NewSubscriber(rdb), "test:events:chat")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	go func() { _ = bridge.Run(ctx, ready) }()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not subscribe")
	}

	bridge.CallUpdated(&models.Call{ID: primitive.NewObjectID(), Participants: []string{"u1", "u2"}, Status: models.CallStatusActive})

	got := receive(t, caller)
	assert.Equal(t, EventCallUpdated, got.Type)
	assert.Contains(t, string(got.Data), `"status":"active"`)
	assertSilent(t, bystander)

	bridge.MessageCreated(&models.Message{ID: primitive.NewObjectID(), Text: "hello"})
	assert.Equal(t, EventMessageCreated, receive(t, caller).Type)
	assert.Equal(t, EventMessageCreated, receive(t, bystander).Type)

	require.NoError(t, rdb.Publish(ctx, "test:events:chat", "not json").Err())
	assertSilent(t, caller)
}
