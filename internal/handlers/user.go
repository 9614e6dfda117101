package handlers

import (
	"soulcare/internal/middleware"
	"soulcare/internal/models"
	"soulcare/internal/services"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns any user's public profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), c.Query("userId"))
	if err != nil {
		utils.HandleError(c, err, "get profile")
		return
	}
	utils.SuccessResponse(c, gin.H{"user": user})
}

// UpdateProfile writes the allow-listed fields of the caller's profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		UserID  string               `json:"userId"`
		Updates models.ProfileUpdate `json:"updates"`
	}
	if !bindJSON(c, &req, "No valid fields to update") {
		return
	}
	if !middleware.EnsureSelf(c, req.UserID) {
		return
	}

	if err := h.userService.UpdateProfile(c.Request.Context(), req.UserID, req.Updates); err != nil {
		utils.HandleError(c, err, "update profile")
		return
	}
	utils.SuccessResponseWithMessage(c, "Profile updated successfully")
}

// AvatarUploadURL presigns a direct upload of the caller's avatar.
func (h *UserHandler) AvatarUploadURL(c *gin.Context) {
	var req struct {
		ContentType string `json:"contentType"`
	}
	if !bindJSON(c, &req, "Only PNG, JPEG, GIF or WebP images are allowed") {
		return
	}

	upload, err := h.userService.AvatarUploadURL(c.Request.Context(), middleware.CurrentUserID(c), req.ContentType)
	if err != nil {
		utils.HandleError(c, err, "avatar upload url")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"uploadUrl": upload.URL,
		"headers":   upload.Headers,
		"avatarUrl": upload.ObjectURL,
		"expiresAt": upload.ExpiresAt,
	})
}
