package websocket

import (
	"encoding/json"
	"time"
)

// EventType names a live event.
type EventType string

const (
	EventSnapshot       EventType = "snapshot"
	EventMessageCreated EventType = "message.created"
	EventMessageUpdated EventType = "message.updated"
	EventCallUpdated    EventType = "call.updated"
	EventPong           EventType = "pong"
	EventError          EventType = "error"
)

// Event is the envelope written to every socket.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent marshals data into an event stamped now.
func NewEvent(eventType EventType, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{Type: eventType, Data: raw, Timestamp: time.Now().UTC()}, nil
}

// Encode returns the wire form of the event.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Envelope is what crosses instances over pub/sub. An empty Users list
// means every connected client.
type Envelope struct {
	Users []string `json:"users,omitempty"`
	Event *Event   `json:"event"`
}

// inbound is the only shape clients may send.
type inbound struct {
	Type string `json:"type"`
}
