package utils

import (
	"net/http"

	"soulcare/pkg/apperrors"
	"soulcare/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// SuccessResponse writes {"success": true} merged with fields.
func SuccessResponse(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// SuccessResponseWithMessage writes a success body carrying a message.
func SuccessResponseWithMessage(c *gin.Context, message string) {
	SuccessResponse(c, gin.H{"message": message})
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{
		Success: false,
		Error:   message,
		Code:    getErrorCode(statusCode),
	})
}

// AbortWithError writes an error response and stops the handler chain.
func AbortWithError(c *gin.Context, statusCode int, message string) {
	ErrorResponse(c, statusCode, message)
	c.Abort()
}

// HandleError maps err onto the taxonomy. Internal causes are logged,
// never returned to the client.
func HandleError(c *gin.Context, err error, context string) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		logger.LogError(err, context, map[string]interface{}{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
	}
	c.JSON(kind.HTTPStatus(), ErrorBody{
		Success: false,
		Error:   apperrors.Message(err),
		Code:    kind.String(),
	})
}

// getErrorCode returns appropriate error code based on status
func getErrorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	case http.StatusInternalServerError:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}
