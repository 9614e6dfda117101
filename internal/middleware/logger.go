package middleware

import (
	"net/http"
	"time"

	"soulcare/internal/utils"
	"soulcare/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Logger writes one access log entry per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.LogRequest(
			c.GetString("request_id"),
			c.Request.Method,
			path,
			c.ClientIP(),
			time.Since(start),
			c.Writer.Status(),
		)
	}
}

// Recovery turns panics into the standard 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("Recovered from panic")
		utils.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
	})
}
