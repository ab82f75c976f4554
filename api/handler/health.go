package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagegrab/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /health.
//
// Status degrades once every crawl slot is taken.
func Health(cr Crawler, maxConcurrent int, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := cr.Stats()

		status := "healthy"
		if maxConcurrent > 0 && stats.ActiveSessions >= maxConcurrent {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        status,
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			ActiveCrawls:  stats.ActiveSessions,
			MaxConcurrent: maxConcurrent,
			Version:       Version,
		})
	}
}
