package handlers

import (
	"soulcare/internal/services"
	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup creates an account and returns a token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupInput
	if !bindJSON(c, &req, "Email, password, and username are required") {
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err, "signup")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": gin.H{
			"uid":      res.User.UID,
			"email":    res.User.Email,
			"username": res.User.Username,
		},
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}

// Signin verifies credentials and returns a token.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req services.SigninInput
	if !bindJSON(c, &req, "Email and password are required") {
		return
	}

	res, err := h.authService.Signin(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err, "signin")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": gin.H{
			"uid":         res.User.UID,
			"email":       res.User.Email,
			"displayName": res.User.Username,
		},
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}
