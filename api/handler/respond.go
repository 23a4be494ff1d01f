package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/api/middleware"
	"github.com/use-agent/gpd-enhance/models"
)

// respondError maps err to an HTTP status and writes it in the envelope the
// route uses.
func respondError(c *gin.Context, err error) {
	se := models.AsScrapeError(err)
	status := mapErrorToStatus(se)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	middleware.AbortWithError(c, status, se)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeAuthorization:
		return http.StatusForbidden // 403
	case models.ErrCodeInvalidTarget, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}

func invalidInput(err error) error {
	return models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err)
}

// listingID parses the :id path parameter.
func listingID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid listing id: "+c.Param("id"), err)
	}
	return id, nil
}
