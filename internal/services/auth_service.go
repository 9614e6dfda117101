package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"soulcare/internal/models"
	appredis "soulcare/internal/redis"
	"soulcare/internal/repository"
	"soulcare/internal/utils"
	"soulcare/pkg/apperrors"
	"soulcare/pkg/logger"

	"github.com/google/uuid"
)

// SigninGuard counts failed sign-ins per account.
type SigninGuard interface {
	Exceeded(ctx context.Context, key string) (bool, error)
	Allow(ctx context.Context, key string) (*appredis.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

type AuthService struct {
	users  repository.UserRepository
	creds  repository.CredentialRepository
	tokens *utils.TokenManager
	guard  SigninGuard
	now    Clock
	newID  func() string
}

func NewAuthService(users repository.UserRepository, creds repository.CredentialRepository,
	tokens *utils.TokenManager, guard SigninGuard, now Clock) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:  users,
		creds:  creds,
		tokens: tokens,
		guard:  guard,
		now:    now,
		newID:  uuid.NewString,
	}
}

type SignupInput struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"required,min=3"`
}

type SigninInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by both signup and signin.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func signupValidationError(errs []utils.ValidationError) error {
	byField := make(map[string]utils.ValidationError, len(errs))
	for _, e := range errs {
		if e.Tag == "required" {
			return apperrors.Validation("Email, password, and username are required")
		}
		byField[e.Field] = e
	}
	if _, ok := byField["username"]; ok {
		return apperrors.Validation("Username must be at least 3 characters long")
	}
	if _, ok := byField["password"]; ok {
		return apperrors.Validation("Password must be at least 6 characters long")
	}
	return apperrors.Validation("Invalid email address")
}

// Signup creates the credential and then the profile. A failed profile
// write removes the credential again.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, signupValidationError(errs)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		if utils.IsPasswordTooLong(err) {
			return nil, apperrors.Validation("Password is too long")
		}
		return nil, apperrors.Internal("Failed to create account", err)
	}

	now := s.now()
	cred := &models.Credential{
		UID:          s.newID(),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		return nil, apperrors.Internal("Failed to create account", err)
	}

	user := models.NewUser(cred.UID, cred.Email, in.Username, now)
	if err := s.users.Create(ctx, user); err != nil {
		if delErr := s.creds.Delete(ctx, cred.UID); delErr != nil {
			logger.LogError(delErr, "signup rollback", map[string]interface{}{"uid": cred.UID})
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		return nil, apperrors.Internal("Failed to create account", err)
	}

	token, expiresAt, err := s.tokens.Generate(user.UID, user.Email)
	if err != nil {
		return nil, apperrors.Internal("Failed to create account", err)
	}

	logger.LogUserAction(user.UID, "signup", nil)
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Signin verifies the password and refreshes lastSeen.
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return nil, apperrors.Validation("Email and password are required")
	}
	if !utils.ValidateEmail(in.Email) {
		return nil, apperrors.Validation("Invalid email address")
	}

	if s.guard != nil {
		locked, err := s.guard.Exceeded(ctx, in.Email)
		if err != nil {
			return nil, apperrors.Internal("Failed to sign in", err)
		}
		if locked {
			logger.LogSecurityEvent("signin_locked", "", "", map[string]interface{}{"email": in.Email})
			return nil, apperrors.RateLimited("Too many failed attempts. Please try again later")
		}
	}

	cred, err := s.creds.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, storeError(err, "No account found with this email", "Failed to sign in")
	}
	if cred.Disabled {
		return nil, apperrors.Forbidden("This account has been disabled")
	}
	if !utils.CheckPassword(in.Password, cred.PasswordHash) {
		s.recordFailure(ctx, cred)
		return nil, apperrors.Unauthenticated("Incorrect password")
	}
	if s.guard != nil {
		if err := s.guard.Reset(ctx, in.Email); err != nil {
			logger.WithError(err).Warn("Failed to reset signin failures")
		}
	}

	if err := s.users.TouchLastSeen(ctx, cred.UID, s.now()); err != nil {
		return nil, storeError(err, "No account found with this email", "Failed to sign in")
	}
	user, err := s.users.GetByID(ctx, cred.UID)
	if err != nil {
		return nil, storeError(err, "No account found with this email", "Failed to sign in")
	}

	token, expiresAt, err := s.tokens.Generate(user.UID, user.Email)
	if err != nil {
		return nil, apperrors.Internal("Failed to sign in", err)
	}

	logger.LogUserAction(user.UID, "signin", nil)
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, cred *models.Credential) {
	logger.LogSecurityEvent("signin_failed", cred.UID, "", nil)
	if s.guard == nil {
		return
	}
	if _, err := s.guard.Allow(ctx, cred.Email); err != nil {
		logger.WithError(err).Warn("Failed to record signin failure")
	}
}
