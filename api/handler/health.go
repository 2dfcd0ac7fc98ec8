package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/serpscout/serpscout/models"
)

// Version is the reported service version.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}
