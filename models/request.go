package models

// ScrapeInsightsRequest is the payload for POST /api/v1/scrape/insights.
//
// Field names follow the admin UI script, which posts form-encoded data.
type ScrapeInsightsRequest struct {
	// PostID is the listing id. Zero or unknown ids are rejected as an invalid target.
	PostID int64 `form:"post_id" json:"post_id"`

	// Nonce is the action token issued for this listing.
	Nonce string `form:"_ajax_nonce" json:"_ajax_nonce"`
}

// ScrapeSourcesRequest is the payload for POST /api/v1/scrape/sources.
type ScrapeSourcesRequest struct {
	PostID int64  `form:"post_id" json:"post_id"`
	Nonce  string `form:"_ajax_nonce" json:"_ajax_nonce"`

	// Source restricts the run to one named source. Empty runs all of them.
	Source string `form:"source" json:"source"`
}

// ListingRequest is the payload for PUT /api/v1/listings/:id.
type ListingRequest struct {
	PostType string `json:"post_type" binding:"required"`
	Title    string `json:"title"`
	Website  string `json:"website"`
}

// BusinessProcessedRequest is the payload the host directory sends after it
// creates or updates a listing.
type BusinessProcessedRequest struct {
	PostID   int64 `form:"post_id" json:"post_id" binding:"required"`
	IsUpdate bool  `form:"is_update" json:"is_update"`
}

// NonceRequest selects the action for GET /api/v1/listings/:id/nonce.
type NonceRequest struct {
	Action string `form:"action" binding:"required,oneof=scrape_insights scrape_all_sources"`
}
