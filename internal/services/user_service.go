package services

import (
	"context"
	"strings"
	"time"

	"soulcare/internal/models"
	"soulcare/internal/repository"
	"soulcare/internal/storage"
	"soulcare/pkg/apperrors"
	"soulcare/pkg/logger"

	"github.com/google/uuid"
)

// AvatarStorage presigns direct uploads.
type AvatarStorage interface {
	PresignPut(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error)
}

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type UserService struct {
	users   repository.UserRepository
	avatars AvatarStorage
	now     Clock
}

// NewUserService builds the profile service. avatars may be nil when
// uploads are not configured.
func NewUserService(users repository.UserRepository, avatars AvatarStorage, now Clock) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, avatars: avatars, now: now}
}

// GetProfile returns the profile without the email address.
func (s *UserService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, apperrors.Validation("User ID is required")
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, storeError(err, "User not found", "Failed to get user profile")
	}
	return user.Public(), nil
}

// UpdateProfile writes the allowed fields present in update.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) error {
	if strings.TrimSpace(uid) == "" {
		return apperrors.Validation("User ID is required")
	}
	if update.Empty() {
		return apperrors.Validation("No valid fields to update")
	}
	if update.Username != nil {
		name := strings.TrimSpace(*update.Username)
		if len(name) < 3 {
			return apperrors.Validation("Username must be at least 3 characters long")
		}
		update.Username = &name
	}
	if p := update.Preferences; p != nil && p.Privacy != "public" && p.Privacy != "private" {
		return apperrors.Validation("Privacy must be public or private")
	}

	if err := s.users.UpdateProfile(ctx, uid, update, s.now()); err != nil {
		return storeError(err, "User not found", "Failed to update profile")
	}

	logger.LogUserAction(uid, "profile_update", nil)
	return nil
}

// AvatarUploadURL presigns an upload slot under the user's avatar prefix.
func (s *UserService) AvatarUploadURL(ctx context.Context, uid, contentType string) (*storage.PresignedUpload, error) {
	if s.avatars == nil {
		return nil, apperrors.Unavailable("Avatar uploads are not configured")
	}
	ext, ok := avatarExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, apperrors.Validation("Only PNG, JPEG, GIF or WebP images are allowed")
	}

	key := "avatars/" + uid + "/" + uuid.NewString() + "." + ext
	upload, err := s.avatars.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, apperrors.Internal("Failed to prepare avatar upload", err)
	}
	return upload, nil
}
