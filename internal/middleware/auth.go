package middleware

import (
	"net/http"
	"strings"

	"soulcare/internal/utils"
	"soulcare/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// JWTAuth middleware for JWT token validation
func JWTAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return authenticate(tokens, false)
}

// WebSocketAuth is JWTAuth that also accepts ?token= since browsers
// cannot set headers on an upgrade request.
func WebSocketAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return authenticate(tokens, true)
}

func authenticate(tokens *utils.TokenManager, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && allowQuery {
			tokenString = strings.TrimSpace(c.Query("token"))
			ok = tokenString != ""
		}
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			logger.LogSecurityEvent("token_rejected", "", c.ClientIP(), map[string]interface{}{
				"path":   c.FullPath(),
				"reason": err.Error(),
			})
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// CurrentUserID returns the authenticated subject.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// EnsureSelf writes a 403 and returns false when uid names someone other
// than the authenticated user. An empty uid is left to the handler.
func EnsureSelf(c *gin.Context, uid string) bool {
	if uid == "" || uid == CurrentUserID(c) {
		return true
	}
	logger.LogSecurityEvent("ownership_violation", CurrentUserID(c), c.ClientIP(), map[string]interface{}{
		"path":   c.FullPath(),
		"target": uid,
	})
	utils.AbortWithError(c, http.StatusForbidden, "You can only act on your own account")
	return false
}
