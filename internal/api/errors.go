package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/maintcal/internal/service"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP responses. Unexpected errors are
// logged and answered with a generic 500.
//
// Rejected requests are not logged at error level; only storage failures
// are. A mismatch carries both day sets so a client can rebase its edit
// without a second read.
func writeError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	var (
		validation *service.ValidationError
		mismatch   *service.DaysMismatchError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.Error(),
			"field": validation.Field,
		})
	case errors.As(err, &mismatch):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   mismatch.Error(),
			"missing": mismatch.Missing,
			"current": mismatch.Current,
		})
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		_ = c.Error(err)
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
