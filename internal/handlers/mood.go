package handlers

import (
	"soulcare/internal/middleware"
	"soulcare/internal/services"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type MoodHandler struct {
	moodService *services.MoodService
}

func NewMoodHandler(moodService *services.MoodService) *MoodHandler {
	return &MoodHandler{moodService: moodService}
}

// SubmitCheckin records one mood check-in.
func (h *MoodHandler) SubmitCheckin(c *gin.Context) {
	var req services.MoodInput
	if !bindJSON(c, &req, "userId and mood_rating are required") {
		return
	}
	if !middleware.EnsureSelf(c, req.UserID) {
		return
	}

	checkin, err := h.moodService.Submit(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err, "mood check-in")
		return
	}
	utils.SuccessResponse(c, gin.H{"checkin": checkin})
}

// GetHistory lists the caller's recent check-ins.
func (h *MoodHandler) GetHistory(c *gin.Context) {
	userID := c.DefaultQuery("userId", middleware.CurrentUserID(c))
	if !middleware.EnsureSelf(c, userID) {
		return
	}

	checkins, err := h.moodService.History(c.Request.Context(), userID, queryInt(c, "days"))
	if err != nil {
		utils.HandleError(c, err, "mood history")
		return
	}
	utils.SuccessResponse(c, gin.H{"checkins": checkins})
}
