package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"soulcare/internal/config"
	appredis "soulcare/internal/redis"
	"soulcare/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *utils.TokenManager {
	return utils.NewTokenManager(config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "soulcare-api",
		Audience: "soulcare-web",
		Expiry:   time.Hour,
	})
}

func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"uid": CurrentUserID(c), "email": c.GetString(ContextEmail)})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER   abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestJWTAuth(t *testing.T) {
	tokens := newTokens()
	valid, _, err := tokens.Generate("u1", "a@b.co")
	require.NoError(t, err)

	other := utils.NewTokenManager(config.JWTConfig{Secret: "other", Issuer: "soulcare-api", Audience: "soulcare-web", Expiry: time.Hour})
	forged, _, err := other.Generate("u1", "a@b.co")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", JWTAuth(tokens), whoami)
	router.GET("/ws", WebSocketAuth(tokens), whoami)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, "Authentication required"},
		{"wrong scheme", "/me", "Token " + valid, http.StatusUnauthorized, "Authentication required"},
		{"bad signature", "/me", "Bearer " + forged, http.StatusUnauthorized, "Invalid or expired token"},
		{"garbage", "/me", "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", "/me", "Bearer " + valid, http.StatusOK, `"uid":"u1"`},
		{"query not accepted on api", "/me?token=" + valid, "", http.StatusUnauthorized, "Authentication required"},
		{"query accepted on ws", "/ws?token=" + valid, "", http.StatusOK, `"email":"a@b.co"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestEnsureSelf(t *testing.T) {
	router := gin.New()
	router.POST("/act", func(c *gin.Context) {
		c.Set(ContextUserID, "u1")
		if !EnsureSelf(c, c.Query("userId")) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	for target, status := range map[string]int{"": http.StatusNoContent, "u1": http.StatusNoContent, "u2": http.StatusForbidden} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/act?userId="+target, nil))
		assert.Equal(t, status, w.Code, "target %q", target)
		if status == http.StatusForbidden {
			assert.Contains(t, w.Body.String(), "You can only act on your own account")
		}
	}
}

func TestCORSWithConfig(t *testing.T) {
	router := gin.New()
	router.Use(CORSWithConfig(config.CORSConfig{AllowedOrigins: []string{"https://app.example"}, AllowCredentials: true}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (*appredis.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter, err := appredis.NewFixedWindowLimiter(client, "test:api", 2, time.Minute)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/x", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		router.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/x", nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "RATE_LIMITED")

	open := gin.New()
	open.GET("/x", RateLimit(brokenLimiter{}), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(), RequestID(), Logger())
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error","code":"INTERNAL_ERROR"}`, w.Body.String())
}
