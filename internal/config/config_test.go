package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CHAT_DEFAULT_LIMIT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 50, cfg.Chat.DefaultLimit)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORS.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("MONGODB_MAX_POOL_SIZE", "12")
	t.Setenv("SIGNIN_MAX_FAILURES", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORS.AllowedOrigins)
	assert.Equal(t, uint64(12), cfg.MongoDB.MaxPoolSize)
	assert.Equal(t, 5, cfg.Security.SigninMaxFailures)
}

func TestValidate(t *testing.T) {
	t.Run("development gets a fallback secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("APP_ENV", "development")
		cfg := Load()

		require.NoError(t, cfg.Validate())
		assert.NotEmpty(t, cfg.JWT.Secret)
	})

	t.Run("production requires a secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("APP_ENV", "production")
		cfg := Load()

		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("rejects bad chat limits", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("CHAT_DEFAULT_LIMIT", "100")
		t.Setenv("CHAT_MAX_LIMIT", "10")
		cfg := Load()

		assert.ErrorContains(t, cfg.Validate(), "invalid chat limits")
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		cfg := Load()

		assert.ErrorContains(t, cfg.Validate(), "APP_TIMEZONE")
	})
}

func TestLocationFallsBackToLocal(t *testing.T) {
	assert.Equal(t, time.Local, AppConfig{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, AppConfig{Timezone: "Nowhere/Nothing"}.Location())
	assert.Equal(t, "UTC", AppConfig{Timezone: "UTC"}.Location().String())
}
