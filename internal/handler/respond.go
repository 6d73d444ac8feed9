package handler

import (
	"net/http"

	"voidspace/backend/internal/apperr"
	"voidspace/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// fail maps an error to its HTTP status and writes the error payload.
// Internal failures are logged and surfaced generically.
func fail(c *gin.Context, err error) {
	if apperr.IsInternal(err) {
		logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
}
