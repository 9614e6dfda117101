package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"soulcare/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, router *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestVoiceConfigNotConfigured(t *testing.T) {
	router := gin.New()
	router.GET("/vapi/config", NewVoiceHandler(config.VoiceConfig{PublicKey: "pk"}).Config)

	code, body := serve(t, router, "/vapi/config")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Voice calls are not configured", body["error"])
}

func TestHealthReportsDegradedDependency(t *testing.T) {
	router := gin.New()
	h := NewHealthHandler("1.2.3", map[string]Pinger{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	}, func() interface{} { return gin.H{"total_clients": 2} })
	router.GET("/health", h.Health)

	code, body := serve(t, router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, map[string]interface{}{"mongodb": "healthy", "redis": "unhealthy"}, body["dependencies"])
	assert.Equal(t, map[string]interface{}{"total_clients": float64(2)}, body["realtime"])
}

func TestQueryInt(t *testing.T) {
	router := gin.New()
	router.GET("/n", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"n": queryInt(c, "limit")})
	})

	for path, want := range map[string]float64{"/n?limit=25": 25, "/n?limit=x": 0, "/n": 0, "/n?limit=-3": -3} {
		_, body := serve(t, router, path)
		assert.Equal(t, want, body["n"], path)
	}
}
