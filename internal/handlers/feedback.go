package handlers

import (
	"soulcare/internal/services"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// Submit stores the voice agent's feedback payload under the call id.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		payload = nil
	}

	if _, err := h.feedbackService.Submit(c.Request.Context(), c.Param("id"), payload); err != nil {
		utils.HandleError(c, err, "submit feedback")
		return
	}
	utils.SuccessResponse(c, nil)
}

// List returns the feedback recorded for a call, newest first.
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.feedbackService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err, "list feedback")
		return
	}
	utils.SuccessResponse(c, gin.H{"feedback": items})
}
