package routes

import (
	"soulcare/internal/handlers"
	"soulcare/internal/middleware"
	"soulcare/internal/services"
	"soulcare/internal/utils"
	"soulcare/internal/websocket"

	"github.com/gin-gonic/gin"
)

func SetupWebSocketRoutes(api *gin.RouterGroup, tokens *utils.TokenManager, hub *websocket.Hub,
	chatService *services.ChatService, allowedOrigins []string) {
	wsHandler := handlers.NewWebSocketHandler(hub, chatService, allowedOrigins)

	api.GET("/chat/ws", middleware.WebSocketAuth(tokens), wsHandler.HandleChat)
}
