package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/api/middleware"
	"github.com/use-agent/gpd-enhance/auth"
	"github.com/use-agent/gpd-enhance/listing"
	"github.com/use-agent/gpd-enhance/models"
)

func toListingResponse(l *listing.Listing) models.ListingResponse {
	meta := l.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	return models.ListingResponse{ID: l.ID, PostType: l.PostType, Title: l.Title, Meta: meta}
}

func getListing(c *gin.Context, store listing.Store, id int64) (*listing.Listing, bool) {
	l, err := store.Get(c.Request.Context(), id)
	if errors.Is(err, listing.ErrNotFound) {
		middleware.AbortWithError(c, http.StatusNotFound,
			models.NewScrapeError(models.ErrCodeInvalidTarget, "listing not found", err))
		return nil, false
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return l, true
}

// GetListing returns a handler for GET /api/v1/listings/:id.
func GetListing(store listing.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := listingID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		l, ok := getListing(c, store, id)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, toListingResponse(l))
	}
}

// PutListing returns a handler for PUT /api/v1/listings/:id. The host
// directory uses it to register a listing and its website.
func PutListing(store listing.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := listingID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.ListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, invalidInput(err))
			return
		}

		l := &listing.Listing{ID: id, PostType: req.PostType, Title: req.Title, Meta: map[string]string{}}
		if req.Website != "" {
			l.Meta[listing.MetaWebsite] = req.Website
		}
		if err := store.Upsert(c.Request.Context(), l); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInternal, "failed to save listing", err))
			return
		}

		saved, ok := getListing(c, store, id)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, toListingResponse(saved))
	}
}

// IssueNonce returns a handler for GET /api/v1/listings/:id/nonce. The token
// is bound to the caller's API key.
func IssueNonce(nonces *auth.Nonces) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := listingID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req models.NonceRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, invalidInput(err))
			return
		}

		c.JSON(http.StatusOK, models.NonceResponse{
			ListingID: id,
			Action:    req.Action,
			Nonce:     nonces.Create(auth.ListingAction(req.Action, id), middleware.Identity(c)),
		})
	}
}
