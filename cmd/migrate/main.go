package main

import (
	"context"
	"flag"
	"log"
	"time"

	"soulcare/internal/config"
	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/pkg/database"
	"soulcare/pkg/logger"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const welcomeText = "Welcome to the community chat. Be kind, and remember you are not alone."

func main() {
	seed := flag.Bool("seed", false, "post a welcome message when the chat is empty")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: logger.LogFormat(cfg.Logging.Format),
		Output: "stdout",
	})

	ctx := context.Background()
	db := database.New(cfg.MongoDB)
	if err := db.Connect(ctx); err != nil {
		logger.Fatal("Failed to connect to MongoDB: " + err.Error())
	}
	defer db.Disconnect(context.Background())

	for _, set := range database.Indexes() {
		if err := ensureCollection(ctx, db.Database(), set.Collection); err != nil {
			logger.Fatal("Failed to create collection " + set.Collection + ": " + err.Error())
		}
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes: " + err.Error())
	}

	if *seed {
		repos := repository.NewMongoRepositories(db.Database(), cfg.MongoDB.OperationTimeout)
		if err := seedWelcome(ctx, repos.Messages); err != nil {
			logger.Fatal("Failed to seed chat: " + err.Error())
		}
	}

	logger.Info("Migration completed successfully")
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if len(names) > 0 {
		logger.WithField("collection", name).Info("Collection already exists")
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		return err
	}
	logger.WithField("collection", name).Info("Created collection")
	return nil
}

// seedWelcome posts the welcome message only into an empty chat.
func seedWelcome(ctx context.Context, messages repository.MessageRepository) error {
	existing, err := messages.ListRecent(ctx, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("Chat already has messages, skipping seed")
		return nil
	}

	return messages.Create(ctx, &models.Message{
		Text:      welcomeText,
		Sender:    "SoulCare",
		SenderID:  "system",
		Timestamp: time.Now().UTC(),
		LikedBy:   []string{},
		Replies:   []string{},
	})
}
