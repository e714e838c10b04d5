package handlers

import (
	"errors"
	"net/http"

	"breadit/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorStatus maps service error kinds to HTTP status codes.
var errorStatus = []struct {
	kind   error
	status int
}{
	{services.ErrUnauthenticated, http.StatusUnauthorized},
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrConflict, http.StatusConflict},
	{services.ErrStoreUnavailable, http.StatusServiceUnavailable},
}

// respondError writes the JSON error body for err. Unclassified errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	for _, m := range errorStatus {
		if errors.Is(err, m.kind) {
			message := services.Detail(err)
			if message == "" {
				message = http.StatusText(m.status)
			}
			if m.status >= http.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
				_ = c.Error(err)
			}
			c.JSON(m.status, gin.H{"error": m.kind.Error(), "message": message})
			return
		}
	}
	logger.Error("unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Could not complete the request"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidInput.Error(), "message": message})
}

// bindJSON decodes the request body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request data passed")
		return false
	}
	return true
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
