package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/enhance"
	"github.com/use-agent/gpd-enhance/models"
)

// BusinessProcessed returns a handler for POST /api/v1/hooks/business-processed,
// called by the host directory after it saves a listing.
func BusinessProcessed(svc *enhance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BusinessProcessedRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, invalidInput(err))
			return
		}

		svc.BusinessProcessed(c.Request.Context(), req.PostID, req.IsUpdate)
		c.JSON(http.StatusAccepted, gin.H{"success": true})
	}
}
