package websocket

import (
	"context"
	"encoding/json"
	"time"

	"soulcare/internal/models"
	"soulcare/pkg/logger"
)

// EventPublisher sends raw payloads to a pub/sub channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// EventSubscriber delivers payloads from pub/sub channels until ctx is done.
type EventSubscriber interface {
	Subscribe(ctx context.Context, channels []string, ready chan<- struct{}, handler func(channel string, payload []byte)) error
}

// Bridge turns domain changes into live events. With a publisher every
// event goes through pub/sub and comes back via Run, so all instances
// deliver the same stream. Without one, events go straight to the hub.
type Bridge struct {
	hub        *Hub
	publisher  EventPublisher
	subscriber EventSubscriber
	channel    string
}

func NewBridge(hub *Hub, publisher EventPublisher, subscriber EventSubscriber, channel string) *Bridge {
	return &Bridge{hub: hub, publisher: publisher, subscriber: subscriber, channel: channel}
}

// Run relays pub/sub envelopes into the local hub until ctx is done.
// ready, if non-nil, is closed once the subscription is live.
func (b *Bridge) Run(ctx context.Context, ready chan<- struct{}) error {
	if b.subscriber == nil {
		if ready != nil {
			close(ready)
		}
		<-ctx.Done()
		return nil
	}
	return b.subscriber.Subscribe(ctx, []string{b.channel}, ready, func(_ string, payload []byte) {
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil || env.Event == nil {
			logger.WithField("channel", b.channel).Warn("Dropping malformed live event")
			return
		}
		b.hub.Publish(env.Users, env.Event)
	})
}

func (b *Bridge) emit(users []string, eventType EventType, data interface{}) {
	event, err := NewEvent(eventType, data)
	if err != nil {
		logger.WithError(err).WithField("event", eventType).Error("Failed to build live event")
		return
	}
	if b.publisher == nil {
		b.hub.Publish(users, event)
		return
	}

	payload, err := json.Marshal(Envelope{Users: users, Event: event})
	if err != nil {
		logger.WithError(err).Error("Failed to encode live event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.publisher.Publish(ctx, b.channel, payload); err != nil {
		logger.WithError(err).WithField("event", eventType).Warn("Publish failed, delivering locally")
		b.hub.Publish(users, event)
	}
}

func (b *Bridge) MessageCreated(msg *models.Message) {
	b.emit(nil, EventMessageCreated, msg)
}

func (b *Bridge) MessageUpdated(msg *models.Message) {
	b.emit(nil, EventMessageUpdated, msg)
}

// CallUpdated goes to the call's participants only.
func (b *Bridge) CallUpdated(call *models.Call) {
	b.emit(append([]string(nil), call.Participants...), EventCallUpdated, call)
}
