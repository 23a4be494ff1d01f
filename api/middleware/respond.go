package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/models"
)

const envelopeKey = "envelope"

// AjaxEnvelope marks the request as coming through the admin-ajax
// compatibility route, whose responses use {"success", "data"}.
func AjaxEnvelope() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(envelopeKey, "ajax")
		c.Next()
	}
}

// IsAjax reports whether AjaxEnvelope ran for this request.
func IsAjax(c *gin.Context) bool {
	return c.GetString(envelopeKey) == "ajax"
}

// AbortWithError writes se in the envelope the request expects.
func AbortWithError(c *gin.Context, status int, se *models.ScrapeError) {
	if IsAjax(c) {
		c.AbortWithStatusJSON(status, models.AjaxResponse{
			Success: false,
			Data:    gin.H{"message": se.Message, "code": se.Code},
		})
		return
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Success: false,
		Message: se.Message,
		Error:   se.ToDetail(),
	})
}
