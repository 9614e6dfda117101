package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]Pinger
	version string
	// realtime reports live connection counts. Optional.
	realtime func() interface{}
}

// NewHealthHandler checks every named dependency on each request.
func NewHealthHandler(version string, checks map[string]Pinger, realtime func() interface{}) *HealthHandler {
	return &HealthHandler{checks: checks, version: version, realtime: realtime}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(gin.H, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	body := gin.H{
		"success":      status == http.StatusOK,
		"status":       overall,
		"version":      h.version,
		"dependencies": deps,
		"timestamp":    time.Now().UTC(),
	}
	if h.realtime != nil {
		body["realtime"] = h.realtime()
	}
	c.JSON(status, body)
}
