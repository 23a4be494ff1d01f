package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/api/handler"
	"github.com/use-agent/gpd-enhance/api/middleware"
	"github.com/use-agent/gpd-enhance/auth"
	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/enhance"
	"github.com/use-agent/gpd-enhance/listing"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:      Recovery → Logger
//	API:         Auth (if enabled) → RateLimit
//	admin-ajax:  AjaxEnvelope → Auth (if enabled) → RateLimit
//
// Health is outside auth so monitoring probes always work.
func NewRouter(svc *enhance.Service, store listing.Store, nonces *auth.Nonces, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	guard := []gin.HandlerFunc{}
	if cfg.Auth.Enabled {
		guard = append(guard, middleware.Auth(cfg.Auth.APIKeys))
	}
	guard = append(guard, middleware.RateLimit(cfg.RateLimit))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(svc.Registry(), cfg.Store.Driver, startTime))

	protected := v1.Group("", guard...)

	// Listings
	protected.GET("/listings/:id", handler.GetListing(store))
	protected.PUT("/listings/:id", handler.PutListing(store))
	protected.GET("/listings/:id/nonce", handler.IssueNonce(nonces))

	// Scrape
	protected.POST("/scrape/insights", handler.ScrapeInsights(svc, nonces))
	protected.POST("/scrape/sources", handler.ScrapeSources(svc, nonces))

	// Host hooks
	protected.POST("/hooks/business-processed", handler.BusinessProcessed(svc))

	// Admin UI compatibility
	ajax := r.Group("/wp-admin", append([]gin.HandlerFunc{middleware.AjaxEnvelope()}, guard...)...)
	ajax.POST("/admin-ajax.php", handler.AdminAjax(svc, nonces))

	return r
}
