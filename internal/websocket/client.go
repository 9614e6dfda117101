package websocket

import (
	"encoding/json"
	"time"

	"soulcare/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only send keepalives
	maxMessageSize = 4 * 1024

	// Buffer size for client send channel
	sendBufferSize = 256
)

// Client is one authenticated socket.
type Client struct {
	Conn *websocket.Conn
	Hub  *Hub

	// Buffered channel of outbound messages. Closed by the hub.
	Send chan []byte

	UserID      string
	ConnectedAt time.Time
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *Hub, userID string) *Client {
	return &Client{
		Conn:        conn,
		Hub:         hub,
		Send:        make(chan []byte, sendBufferSize),
		UserID:      userID,
		ConnectedAt: time.Now(),
	}
}

// Queue writes event straight into the send buffer. Use it before the
// client is registered.
func (c *Client) Queue(event *Event) error {
	payload, err := event.Encode()
	if err != nil {
		return err
	}
	select {
	case c.Send <- payload:
	default:
		logger.WithField("user_id", c.UserID).Warn("Client send buffer full, dropping event")
	}
	return nil
}

// ReadPump keeps the read deadline fresh and answers pings. It returns
// when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Detach(c)
		c.Conn.Close()
		logger.WithFields(map[string]interface{}{
			"user_id":  c.UserID,
			"duration": time.Since(c.ConnectedAt).String(),
		}).Info("WebSocket disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.WithFields(map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				}).Error("WebSocket read error")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "ping" {
			c.reply(EventError, map[string]string{"error": "Unsupported message"})
			continue
		}
		c.reply(EventPong, map[string]interface{}{})
	}
}

func (c *Client) reply(eventType EventType, data interface{}) {
	event, err := NewEvent(eventType, data)
	if err != nil {
		return
	}
	c.Hub.SendTo(c, event)
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
