package routes

import (
	"soulcare/internal/config"
	"soulcare/internal/handlers"
	"soulcare/internal/middleware"
	"soulcare/internal/repository"
	"soulcare/internal/services"
	"soulcare/internal/utils"
	"soulcare/internal/websocket"

	"github.com/gin-gonic/gin"
)

// Limiters groups the Redis backed limiters. Nil fields disable a limit.
type Limiters struct {
	API      middleware.Limiter
	Signin   services.SigninGuard
	Messages services.RateLimiter
	Calls    services.RateLimiter
}

// Deps is everything the router needs to build services and handlers.
type Deps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Tokens   *utils.TokenManager
	Hub      *websocket.Hub
	Notifier services.Notifier
	Limiters Limiters
	// Avatars is nil when S3 is not configured.
	Avatars services.AvatarStorage
	Health  map[string]handlers.Pinger
	Clock   services.Clock
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	cfg := deps.Config
	loc := cfg.App.Location()

	// Initialize services
	authService := services.NewAuthService(deps.Repos.Users, deps.Repos.Credentials, deps.Tokens, deps.Limiters.Signin, deps.Clock)
	userService := services.NewUserService(deps.Repos.Users, deps.Avatars, deps.Clock)
	chatService := services.NewChatService(deps.Repos.Messages, deps.Notifier, deps.Limiters.Messages, cfg.Chat, deps.Clock)
	callService := services.NewCallService(deps.Repos.Calls, deps.Repos.Users, deps.Notifier, deps.Limiters.Calls, deps.Clock)
	feedbackService := services.NewFeedbackService(deps.Repos.Feedback, deps.Clock)
	moodService := services.NewMoodService(deps.Repos.Moods, loc, deps.Clock)
	dashboardService := services.NewDashboardService(deps.Repos.Calls, deps.Repos.Moods, loc, deps.Clock)

	// Initialize handlers with dependencies
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService)
	callHandler := handlers.NewCallHandler(callService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	moodHandler := handlers.NewMoodHandler(moodService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	voiceHandler := handlers.NewVoiceHandler(cfg.Voice)
	healthHandler := handlers.NewHealthHandler(cfg.App.Version, deps.Health, func() interface{} {
		return deps.Hub.GetStats()
	})

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORSWithConfig(cfg.Server.CORS))

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")

	SetupAuthRoutes(api, authHandler, deps.Limiters.API)

	// Called by the voice agent, which holds no user token
	api.POST("/vapi/:id/feedback", feedbackHandler.Submit)
	api.GET("/vapi/config", voiceHandler.Config)

	protected := api.Group("/")
	protected.Use(middleware.JWTAuth(deps.Tokens), middleware.RateLimit(deps.Limiters.API))
	{
		users := protected.Group("/users")
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.POST("/avatar", userHandler.AvatarUploadURL)
		}

		chat := protected.Group("/chat")
		{
			chat.GET("/messages", chatHandler.GetMessages)
			chat.POST("/messages", chatHandler.CreateMessage)
			chat.PUT("/messages", chatHandler.UpdateMessage)
		}

		calls := protected.Group("/calls")
		{
			calls.GET("", callHandler.GetCalls)
			calls.POST("", callHandler.StartCall)
			calls.PUT("", callHandler.UpdateCall)
		}

		protected.GET("/vapi/:id/feedback", feedbackHandler.List)

		mood := protected.Group("/mood")
		{
			mood.GET("", moodHandler.GetHistory)
			mood.POST("", moodHandler.SubmitCheckin)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.Stats)
			dashboard.GET("/activity", dashboardHandler.Activity)
		}
	}

	SetupWebSocketRoutes(api, deps.Tokens, deps.Hub, chatService, cfg.Server.CORS.AllowedOrigins)
}
