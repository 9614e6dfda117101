package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soulcare/pkg/apperrors"
	"soulcare/pkg/database"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NewMongoRepositories wires every repository to db.
func NewMongoRepositories(db *mongo.Database, timeout time.Duration) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db.Collection(database.UsersCollection), timeout),
		Credentials: NewCredentialRepository(db.Collection(database.CredentialsCollection), timeout),
		Messages:    NewMessageRepository(db.Collection(database.MessagesCollection), timeout),
		Calls:       NewCallRepository(db.Collection(database.CallsCollection), timeout),
		Moods:       NewMoodRepository(db.Collection(database.MoodCheckinsCollection), timeout),
		Feedback:    NewFeedbackRepository(db.Collection(database.CallFeedbackCollection), timeout),
	}
}

// base carries the collection and the per-operation deadline.
type base struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (b base) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, b.timeout)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrNotFound
	}
	return oid, nil
}

// translate maps driver errors onto the repository sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, apperrors.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
