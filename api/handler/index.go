package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/skulookup/lookup"
	"github.com/use-agent/skulookup/models"
)

// GetIndex returns a handler for GET /api/v1/index. It never triggers a
// rebuild.
func GetIndex(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.IndexResponse{
			Success: true,
			Index:   svc.IndexStatus(),
		})
	}
}

// RefreshIndex returns a handler for POST /api/v1/index/refresh.
//
// An unavailable sitemap still replaces the index (with an empty one), so
// the response carries both the new status and the error.
func RefreshIndex(svc *lookup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := svc.RefreshIndex(c.Request.Context())
		if err != nil {
			slog.Warn("index refresh failed", "error", err)
			respondError(c, err, func(d *models.ErrorDetail) any {
				return models.IndexResponse{Index: status, Error: d}
			})
			return
		}

		slog.Info("index refreshed", "entries", status.Entries)
		c.JSON(http.StatusOK, models.IndexResponse{
			Success: true,
			Index:   status,
		})
	}
}
