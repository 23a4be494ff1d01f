package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/models"
	"github.com/use-agent/gpd-enhance/sources"
)

// Health returns a handler for GET /api/v1/health.
func Health(reg *sources.Registry, storeDriver string, startTime time.Time) gin.HandlerFunc {
	names := make([]string, 0)
	for _, n := range reg.Names() {
		names = append(names, string(n))
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: config.Version,
			Sources: names,
			Store:   storeDriver,
		})
	}
}
