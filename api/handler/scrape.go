package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/api/middleware"
	"github.com/use-agent/gpd-enhance/auth"
	"github.com/use-agent/gpd-enhance/enhance"
	"github.com/use-agent/gpd-enhance/models"
)

// Admin-ajax actions served by AdminAjax.
const (
	AjaxActionScrapeInsights   = "gpd_enhancement_scrape_insights"
	AjaxActionScrapeAllSources = "gpd_enhancement_scrape_all_sources"
)

var errNonce = models.NewScrapeError(models.ErrCodeAuthorization, "Nonce verification failed.", nil)

// checkNonce verifies the token for action on the listing, for the caller
// identified by the auth middleware.
func checkNonce(c *gin.Context, nonces *auth.Nonces, action string, id int64, token string) error {
	if token == "" || !nonces.Verify(token, auth.ListingAction(action, id), middleware.Identity(c)) {
		return errNonce
	}
	return nil
}

// ScrapeInsights returns a handler for POST /api/v1/scrape/insights.
//
// The scrape is not cancelled when the client goes away; the listing is
// still updated.
func ScrapeInsights(svc *enhance.Service, nonces *auth.Nonces) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeInsightsRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, invalidInput(err))
			return
		}
		if err := checkNonce(c, nonces, auth.ActionScrapeInsights, req.PostID, req.Nonce); err != nil {
			respondError(c, err)
			return
		}

		resp, err := svc.ScrapeInsights(context.WithoutCancel(c.Request.Context()), req.PostID)
		if err != nil {
			respondError(c, err)
			return
		}

		if middleware.IsAjax(c) {
			data := gin.H{"message": resp.Message, "data": resp.Data}
			if !resp.Success {
				data = gin.H{"message": resp.Message, "code": resp.Code}
			}
			c.JSON(http.StatusOK, models.AjaxResponse{Success: resp.Success, Data: data})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ScrapeSources returns a handler for POST /api/v1/scrape/sources.
//
// Once the request is authorized and the listing accepted the status is
// always 200; per-source failures are in the body.
func ScrapeSources(svc *enhance.Service, nonces *auth.Nonces) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeSourcesRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, invalidInput(err))
			return
		}
		if err := checkNonce(c, nonces, auth.ActionScrapeAllSources, req.PostID, req.Nonce); err != nil {
			respondError(c, err)
			return
		}

		resp, err := svc.ScrapeAllSources(context.WithoutCancel(c.Request.Context()), req.PostID, req.Source)
		if err != nil {
			respondError(c, err)
			return
		}

		if middleware.IsAjax(c) {
			c.JSON(http.StatusOK, models.AjaxResponse{
				Success: resp.Success,
				Data:    gin.H{"message": resp.Message, "results": resp.Results},
			})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// AdminAjax dispatches POST /wp-admin/admin-ajax.php on its "action" field,
// so the existing admin UI script can talk to the service unchanged.
func AdminAjax(svc *enhance.Service, nonces *auth.Nonces) gin.HandlerFunc {
	handlers := map[string]gin.HandlerFunc{
		AjaxActionScrapeInsights:   ScrapeInsights(svc, nonces),
		AjaxActionScrapeAllSources: ScrapeSources(svc, nonces),
	}

	return func(c *gin.Context) {
		h, ok := handlers[c.PostForm("action")]
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput,
				"unknown action: "+c.PostForm("action"), nil))
			return
		}
		h(c)
	}
}
