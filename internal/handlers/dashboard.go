package handlers

import (
	"soulcare/internal/middleware"
	"soulcare/internal/services"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	userID := c.DefaultQuery("userId", middleware.CurrentUserID(c))
	if !middleware.EnsureSelf(c, userID) {
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err, "dashboard stats")
		return
	}
	utils.SuccessResponse(c, gin.H{"stats": stats})
}

func (h *DashboardHandler) Activity(c *gin.Context) {
	userID := c.DefaultQuery("userId", middleware.CurrentUserID(c))
	if !middleware.EnsureSelf(c, userID) {
		return
	}

	items, err := h.dashboardService.Activity(c.Request.Context(), userID, queryInt(c, "limit"))
	if err != nil {
		utils.HandleError(c, err, "dashboard activity")
		return
	}
	utils.SuccessResponse(c, gin.H{"activity": items})
}
