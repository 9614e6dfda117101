package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	appredis "soulcare/internal/redis"
	"soulcare/internal/utils"
	"soulcare/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Limiter is satisfied by the Redis fixed-window limiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (*appredis.RateLimitResult, error)
}

// RateLimit applies limiter per authenticated user, or per IP before
// authentication. Limiter outages let the request through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), getClientKey(c))
		if err != nil {
			logger.WithError(err).Warn("API rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.ResetIn.Seconds()))))
			utils.AbortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		c.Next()
	}
}

// Helper function to get client identifier
func getClientKey(c *gin.Context) string {
	if userID := c.GetString(ContextUserID); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}
