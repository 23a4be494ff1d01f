package models

import orderedmap "github.com/wk8/go-ordered-map/v2"

// SourceResults maps source names to their results in run order.
type SourceResults = orderedmap.OrderedMap[string, ScrapeResult]

// NewSourceResults returns an empty ordered result map.
func NewSourceResults() *SourceResults {
	return orderedmap.New[string, ScrapeResult]()
}

// SourcesResponse is the response for the multi-source scrape.
type SourcesResponse struct {
	// Success is true only when every source succeeded.
	Success bool `json:"success"`

	Message string `json:"message"`

	// Results holds one entry per attempted source, serialized as a JSON
	// object whose keys keep the run order.
	Results *SourceResults `json:"results"`
}

// InsightsResponse is the response for the legacy primary website scrape.
type InsightsResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *ExtractedFields `json:"data"`

	// Saved reports whether the fields were written to the listing.
	Saved bool `json:"saved"`

	// Code is the error kind when Success is false.
	Code string `json:"code,omitempty"`
}

// ErrorResponse is returned when a request is rejected before scraping.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error"`
}

// ListingResponse describes a listing and its stored metadata.
type ListingResponse struct {
	ID       int64             `json:"id"`
	PostType string            `json:"post_type"`
	Title    string            `json:"title"`
	Meta     map[string]string `json:"meta"`
}

// NonceResponse carries an issued action token.
type NonceResponse struct {
	ListingID int64  `json:"listing_id"`
	Action    string `json:"action"`
	Nonce     string `json:"nonce"`
}

// AjaxResponse mirrors the admin-ajax envelope the admin UI script expects:
// {"success": bool, "data": {...}}.
type AjaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string   `json:"status"`
	Uptime  string   `json:"uptime"`
	Version string   `json:"version"`
	Sources []string `json:"sources"`
	Store   string   `json:"store"`
}
