// Package handlers adapts HTTP requests onto the services.
package handlers

import (
	"net/http"
	"strconv"

	"soulcare/internal/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into dst. A malformed body is answered with
// 400 and message, so each route keeps its own wording.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed so the service default applies.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
