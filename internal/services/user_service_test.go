package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"soulcare/internal/models"
	"soulcare/internal/repository/memory"
	"soulcare/internal/storage"
	"soulcare/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAvatars struct {
	key string
	err error
}

func (f *fakeAvatars) PresignPut(_ context.Context, key, _ string) (*storage.PresignedUpload, error) {
	f.key = key
	if f.err != nil {
		return nil, f.err
	}
	return &storage.PresignedUpload{URL: "https://upload/" + key, ObjectURL: "https://cdn/" + key}, nil
}

func strPtr(s string) *string { return &s }

func newUserService(t *testing.T, avatars AvatarStorage) *UserService {
	t.Helper()
	repos := memory.New().Repositories()
	require.NoError(t, repos.Users.Create(context.Background(), models.NewUser("u1", "a@b.co", "ada", fixedNow)))
	return NewUserService(repos.Users, avatars, fixedClock)
}

func TestGetProfileHidesEmail(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	user, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.Empty(t, user.Email)

	_, err = svc.GetProfile(ctx, "nobody")
	assertKind(t, err, apperrors.KindNotFound, "User not found")

	_, err = svc.GetProfile(ctx, "")
	assertKind(t, err, apperrors.KindValidation, "User ID is required")
}

func TestUpdateProfile(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	err := svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{
		Username:    strPtr(" adele "),
		Bio:         strPtr("hello"),
		Preferences: &models.UserPreferences{Notifications: false, Privacy: "private"},
	})
	require.NoError(t, err)

	user, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "adele", user.Username)
	assert.Equal(t, "hello", user.Profile.Bio)
	assert.Equal(t, "private", user.Profile.Preferences.Privacy)
	assert.False(t, user.Profile.Preferences.Notifications)
	require.NotNil(t, user.UpdatedAt)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	err := svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{})
	assertKind(t, err, apperrors.KindValidation, "No valid fields to update")

	err = svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{Username: strPtr("ab")})
	assertKind(t, err, apperrors.KindValidation, "Username must be at least 3 characters long")

	err = svc.UpdateProfile(ctx, "u1", models.ProfileUpdate{Preferences: &models.UserPreferences{Privacy: "friends"}})
	assertKind(t, err, apperrors.KindValidation, "Privacy must be public or private")

	err = svc.UpdateProfile(ctx, "ghost", models.ProfileUpdate{Bio: strPtr("x")})
	assertKind(t, err, apperrors.KindNotFound, "User not found")
}

func TestAvatarUploadURL(t *testing.T) {
	ctx := context.Background()

	_, err := newUserService(t, nil).AvatarUploadURL(ctx, "u1", "image/png")
	assertKind(t, err, apperrors.KindUnavailable, "Avatar uploads are not configured")

	avatars := &fakeAvatars{}
	svc := newUserService(t, avatars)

	_, err = svc.AvatarUploadURL(ctx, "u1", "application/pdf")
	assertKind(t, err, apperrors.KindValidation, "Only PNG, JPEG, GIF or WebP images are allowed")

	upload, err := svc.AvatarUploadURL(ctx, "u1", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(avatars.key, "avatars/u1/"))
	assert.True(t, strings.HasSuffix(avatars.key, ".jpg"))
	assert.Equal(t, "https://cdn/"+avatars.key, upload.ObjectURL)

	avatars.err = errors.New("no credentials")
	_, err = svc.AvatarUploadURL(ctx, "u1", "image/webp")
	assertKind(t, err, apperrors.KindInternal, "Failed to prepare avatar upload")
}
