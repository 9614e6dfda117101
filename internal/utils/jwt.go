package utils

import (
	"errors"
	"fmt"
	"time"

	"soulcare/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims represents JWT claims for signed-in users
type UserClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ErrInvalidToken covers every verification failure.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies HS256 user tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	expiry   time.Duration
	now      func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   cfg.Expiry,
		now:      time.Now,
	}
}

// Generate signs a token whose subject is uid.
func (tm *TokenManager) Generate(uid, email string) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.expiry)

	claims := UserClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   uid,
			Audience:  jwt.ClaimStrings{tm.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, expiry, issuer and audience.
func (tm *TokenManager) Verify(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithAudience(tm.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
