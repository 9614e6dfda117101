package handlers

import (
	"net/http"

	"soulcare/internal/middleware"
	"soulcare/internal/services"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	callService *services.CallService
}

func NewCallHandler(callService *services.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

// GetCalls returns one call by callId, or the open calls of userId.
func (h *CallHandler) GetCalls(c *gin.Context) {
	ctx := c.Request.Context()

	if callID := c.Query("callId"); callID != "" {
		call, err := h.callService.Get(ctx, callID)
		if err != nil {
			utils.HandleError(c, err, "get call")
			return
		}
		utils.SuccessResponse(c, gin.H{"call": call})
		return
	}

	userID := c.Query("userId")
	if userID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Call ID or user ID is required")
		return
	}
	if !middleware.EnsureSelf(c, userID) {
		return
	}

	calls, err := h.callService.ListOpen(ctx, userID)
	if err != nil {
		utils.HandleError(c, err, "list calls")
		return
	}
	utils.SuccessResponse(c, gin.H{"calls": calls})
}

// StartCall opens a waiting call for the caller.
func (h *CallHandler) StartCall(c *gin.Context) {
	var req services.StartCallInput
	if !bindJSON(c, &req, "User ID and username are required") {
		return
	}
	if !middleware.EnsureSelf(c, req.UserID) {
		return
	}

	call, err := h.callService.Start(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err, "start call")
		return
	}
	utils.SuccessResponse(c, gin.H{"call": call})
}

// UpdateCall applies join, end, update_notes or rate.
func (h *CallHandler) UpdateCall(c *gin.Context) {
	var req services.UpdateCallInput
	if !bindJSON(c, &req, "Call ID and action are required") {
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.CurrentUserID(c)
	}
	if !middleware.EnsureSelf(c, req.UserID) {
		return
	}

	call, err := h.callService.Update(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err, "update call")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": "Call updated successfully",
		"call":    call,
	})
}
