package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/skulookup/lookup"
	"github.com/use-agent/skulookup/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Reports "degraded" while the cached index is empty, which covers both a
// sitemap that could not be fetched and one that lists no products.
func Health(svc *lookup.Service, engines []string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		index := svc.IndexStatus()

		status := "healthy"
		if !index.RefreshedAt.IsZero() && index.Entries == 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Index:   index,
			Engines: engines,
			Version: Version,
		})
	}
}
