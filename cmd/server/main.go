package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"soulcare/internal/config"
	"soulcare/internal/handlers"
	appredis "soulcare/internal/redis"
	"soulcare/internal/repository"
	"soulcare/internal/routes"
	"soulcare/internal/server"
	"soulcare/internal/storage"
	"soulcare/internal/utils"
	"soulcare/internal/websocket"
	"soulcare/pkg/database"
	"soulcare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      logger.LogFormat(cfg.Logging.Format),
		Output:      cfg.Logging.Output,
		Development: !cfg.App.IsProduction(),
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	mongo := database.New(cfg.MongoDB)
	if err := mongo.Connect(ctx); err != nil {
		logger.Fatal("Failed to connect to MongoDB: " + err.Error())
	}
	defer mongo.Disconnect(context.Background())
	if err := mongo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure indexes: " + err.Error())
	}
	repos := repository.NewMongoRepositories(mongo.Database(), cfg.MongoDB.OperationTimeout)

	health := map[string]handlers.Pinger{"mongodb": mongo.HealthCheck}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	bridge := websocket.NewBridge(hub, nil, nil, "")
	var limiters routes.Limiters

	// Redis is optional: without it limits are off and live events stay local
	if cfg.Redis.Enabled() {
		rdb, err := appredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, running without rate limits and cross-instance events")
		} else {
			defer rdb.Close()
			limiters = buildLimiters(cfg, rdb)
			bridge = websocket.NewBridge(hub,
				appredis.NewPublisher(rdb),
				appredis.NewSubscriber(rdb),
				appredis.Key(cfg.Redis.KeyPrefix, "events", "chat"),
			)
			health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	deps := routes.Deps{
		Config:   cfg,
		Repos:    repos,
		Tokens:   utils.NewTokenManager(cfg.JWT),
		Hub:      hub,
		Notifier: bridge,
		Limiters: limiters,
		Health:   health,
	}

	if cfg.Storage.Enabled() {
		avatars, err := storage.NewClient(ctx, cfg.Storage)
		if err != nil {
			logger.WithError(err).Warn("S3 unavailable, avatar uploads disabled")
		} else {
			deps.Avatars = avatars
		}
	}

	// Initialize Gin router
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupRoutes(router, deps)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}

	srv := server.New(cfg.Server, ":"+port, router)
	srv.Go(hub.Run)
	srv.Go(func(ctx context.Context) error { return bridge.Run(ctx, nil) })

	logger.WithFields(map[string]interface{}{
		"env":     cfg.App.Environment,
		"version": cfg.App.Version,
	}).Info("Starting " + cfg.App.Name)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("Server error: " + err.Error())
	}
}

// buildLimiters creates the fixed window limiters. A limiter that fails to
// build is left nil, which disables that limit.
func buildLimiters(cfg *config.Config, rdb *redis.Client) routes.Limiters {
	var limiters routes.Limiters
	sec := cfg.Security
	prefix := cfg.Redis.KeyPrefix

	if l, err := appredis.NewFixedWindowLimiter(rdb, appredis.Key(prefix, "rl", "signin"), sec.SigninMaxFailures, sec.SigninLockWindow); err == nil {
		limiters.Signin = l
	} else {
		logger.WithError(err).Warn("Signin lockout disabled")
	}
	if l, err := appredis.NewFixedWindowLimiter(rdb, appredis.Key(prefix, "rl", "messages"), sec.MessageRateLimit, sec.MessageRateWindow); err == nil {
		limiters.Messages = l
	} else {
		logger.WithError(err).Warn("Message rate limit disabled")
	}
	if l, err := appredis.NewFixedWindowLimiter(rdb, appredis.Key(prefix, "rl", "calls"), sec.CallRateLimit, sec.CallRateWindow); err == nil {
		limiters.Calls = l
	} else {
		logger.WithError(err).Warn("Call rate limit disabled")
	}
	if l, err := appredis.NewFixedWindowLimiter(rdb, appredis.Key(prefix, "rl", "api"), sec.APIRateLimit, sec.APIRateWindow); err == nil {
		limiters.API = l
	} else {
		logger.WithError(err).Warn("API rate limit disabled")
	}
	return limiters
}
