package routes

import (
	"soulcare/internal/handlers"
	"soulcare/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers signup and signin. They are limited per IP.
func SetupAuthRoutes(api *gin.RouterGroup, authHandler *handlers.AuthHandler, limiter middleware.Limiter) {
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(limiter))
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/signin", authHandler.Signin)
	}
}
