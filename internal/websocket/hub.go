package websocket

import (
	"context"
	"sync"

	"soulcare/pkg/logger"
)

// Dispatch is one event bound for all clients, a set of users or a
// single socket.
type Dispatch struct {
	Users  []string
	Client *Client
	Event  *Event
}

// Hub maintains the set of active clients and broadcasts events
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Clients organized by user ID. A user may hold several tabs.
	userClients map[string]map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Events to fan out
	Broadcast chan *Dispatch

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// HubStats contains hub statistics
type HubStats struct {
	TotalClients int `json:"total_clients"`
	OnlineUsers  int `json:"online_users"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string]map[*Client]bool),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		Broadcast:   make(chan *Dispatch, 256),
		done:        make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then
// closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case d := <-h.Broadcast:
			h.dispatch(d)
		}
	}
}

// Attach registers client. It reports false once the hub has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Detach unregisters client. Safe to call after the hub has stopped.
func (h *Hub) Detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for local delivery without blocking on slow sockets.
func (h *Hub) Publish(users []string, event *Event) {
	h.enqueue(&Dispatch{Users: users, Event: event})
}

// SendTo queues an event for a single socket.
func (h *Hub) SendTo(client *Client, event *Event) {
	h.enqueue(&Dispatch{Client: client, Event: event})
}

func (h *Hub) enqueue(d *Dispatch) {
	select {
	case h.Broadcast <- d:
	default:
		logger.WithField("event", d.Event.Type).Warn("Hub broadcast queue full, dropping event")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]bool)
	}
	h.userClients[client.UserID][client] = true

	logger.WithFields(map[string]interface{}{
		"user_id":       client.UserID,
		"total_clients": len(h.clients),
	}).Info("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	h.removeLocked(client)

	logger.WithFields(map[string]interface{}{
		"user_id":       client.UserID,
		"total_clients": len(h.clients),
	}).Info("Client unregistered")
}

func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client)
	if tabs := h.userClients[client.UserID]; tabs != nil {
		delete(tabs, client)
		if len(tabs) == 0 {
			delete(h.userClients, client.UserID)
		}
	}
	close(client.Send)
}

func (h *Hub) dispatch(d *Dispatch) {
	payload, err := d.Event.Encode()
	if err != nil {
		logger.WithError(err).Error("Failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if d.Client != nil {
		if h.clients[d.Client] {
			h.deliverLocked(d.Client, payload)
		}
		return
	}
	if len(d.Users) == 0 {
		for client := range h.clients {
			h.deliverLocked(client, payload)
		}
		return
	}
	seen := make(map[string]bool, len(d.Users))
	for _, uid := range d.Users {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		for client := range h.userClients[uid] {
			h.deliverLocked(client, payload)
		}
	}
}

// deliverLocked drops clients whose send buffer is full.
func (h *Hub) deliverLocked(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		logger.WithField("user_id", client.UserID).Warn("Client send buffer full, disconnecting")
		h.removeLocked(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// GetStats returns current hub statistics
func (h *Hub) GetStats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HubStats{TotalClients: len(h.clients), OnlineUsers: len(h.userClients)}
}

// IsUserOnline checks if a user has at least one open socket
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID]) > 0
}
