package handlers

import (
	"soulcare/internal/middleware"
	"soulcare/internal/services"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GetMessages returns the latest messages, oldest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	messages, err := h.chatService.List(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		utils.HandleError(c, err, "get messages")
		return
	}
	utils.SuccessResponse(c, gin.H{"messages": messages})
}

// CreateMessage posts a message as the authenticated user.
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	var req services.CreateMessageInput
	if !bindJSON(c, &req, "Text and sender are required") {
		return
	}

	msg, err := h.chatService.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		utils.HandleError(c, err, "create message")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": msg})
}

// UpdateMessage applies a like or unlike.
func (h *ChatHandler) UpdateMessage(c *gin.Context) {
	var req services.ReactInput
	if !bindJSON(c, &req, "Message ID, action, and user ID are required") {
		return
	}
	if !middleware.EnsureSelf(c, req.UserID) {
		return
	}

	msg, err := h.chatService.React(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err, "update message")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": "Message updated successfully",
		"likes":   msg.Likes,
		"likedBy": msg.LikedBy,
	})
}
