// Package repository persists the service's documents. The Mongo
// implementations live here; package memory mirrors them for tests.
package repository

import (
	"context"
	"time"

	"soulcare/internal/models"
)

// Errors returned by every implementation are the sentinels in
// pkg/apperrors: ErrNotFound, ErrDuplicate and ErrStale.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, uid string) (*models.User, error)
	UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate, at time.Time) error
	TouchLastSeen(ctx context.Context, uid string, at time.Time) error
}

type CredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential) error
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	Delete(ctx context.Context, uid string) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// ListRecent returns up to limit messages, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.Message, error)
	// Like adds uid to likedBy and increments likes in one write. It
	// reports false when uid had already liked the message.
	Like(ctx context.Context, id, uid string) (bool, error)
	// Unlike is the inverse of Like.
	Unlike(ctx context.Context, id, uid string) (bool, error)
}

type CallRepository interface {
	// Create fails with ErrDuplicate when a participant already has an open call.
	Create(ctx context.Context, call *models.Call) error
	GetByID(ctx context.Context, id string) (*models.Call, error)
	ListOpenByParticipant(ctx context.Context, uid string) ([]models.Call, error)
	ListByParticipantSince(ctx context.Context, uid string, since time.Time) ([]models.Call, error)
	// CompareAndSwap writes call if the stored version still equals
	// call.Version, then bumps call.Version. A lost race gives ErrStale.
	CompareAndSwap(ctx context.Context, call *models.Call) error
}

type MoodRepository interface {
	Create(ctx context.Context, checkin *models.MoodCheckin) error
	// ListByUserSince returns check-ins at or after since, newest first.
	ListByUserSince(ctx context.Context, uid string, since time.Time, limit int) ([]models.MoodCheckin, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.CallFeedback) error
	ListByCall(ctx context.Context, callID string) ([]models.CallFeedback, error)
}

// Repositories bundles every store the services need.
type Repositories struct {
	Users       UserRepository
	Credentials CredentialRepository
	Messages    MessageRepository
	Calls       CallRepository
	Moods       MoodRepository
	Feedback    FeedbackRepository
}
