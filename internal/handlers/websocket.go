package handlers

import (
	"net/http"

	"soulcare/internal/middleware"
	"soulcare/internal/services"
	"soulcare/internal/websocket"
	"soulcare/pkg/logger"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub         *websocket.Hub
	chatService *services.ChatService
	upgrader    gorilla.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins. A "*" entry
// accepts any origin.
func NewWebSocketHandler(hub *websocket.Hub, chatService *services.ChatService, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub:         hub,
		chatService: chatService,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// HandleChat upgrades the connection, sends a snapshot of recent
// messages and then streams live events.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithError(err).Warn("Failed to upgrade WebSocket connection")
		return
	}

	client := websocket.NewClient(conn, h.hub, userID)
	if !h.hub.Attach(client) {
		conn.Close()
		return
	}

	messages, err := h.chatService.List(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		logger.LogError(err, "websocket snapshot", map[string]interface{}{"user_id": userID})
	} else if event, err := websocket.NewEvent(websocket.EventSnapshot, messages); err == nil {
		h.hub.SendTo(client, event)
	}

	logger.LogUserAction(userID, "websocket_connected", map[string]interface{}{
		"ip": c.ClientIP(),
	})

	go client.WritePump()
	go client.ReadPump()
}
