package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	_, client := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- NewSubscriber(client).Subscribe(ctx, []string{"test:events"}, ready, func(channel string, payload []byte) {
			received <- channel + "|" + string(payload)
		})
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription was not confirmed")
	}

	require.NoError(t, NewPublisher(client).Publish(ctx, "test:events", []byte("hello")))

	select {
	case got := <-received:
		assert.Equal(t, "test:events|hello", got)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
