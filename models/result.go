package models

// NotFound is the placeholder for a field absent from the scraped document.
// UI code compares against it, so the exact string is part of the contract.
const NotFound = "Not found"

// ScrapeRequest is what a source needs to enhance one listing.
type ScrapeRequest struct {
	ListingID int64
	Website   string
}

// ExtractedFields are the values pulled from a listing's website.
type ExtractedFields struct {
	PageTitle       string `json:"page_title"`
	FirstH1         string `json:"first_h1"`
	MetaDescription string `json:"meta_description"`
}

// HasAny reports whether at least one field was found.
func (f ExtractedFields) HasAny() bool {
	return f.PageTitle != NotFound || f.FirstH1 != NotFound || f.MetaDescription != NotFound
}

// ScrapeResult is the outcome of one source attempt.
//
// A failed result never aborts the run it belongs to; callers must ignore
// Data when Success is false.
type ScrapeResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *ExtractedFields `json:"data"`

	// Domains lists sites this source touched. Nothing populates it yet.
	Domains []string `json:"domains"`

	// Code is the error kind of a failed result.
	Code string `json:"code,omitempty"`
}

// SucceededResult builds a successful result carrying fields.
func SucceededResult(message string, fields ExtractedFields) ScrapeResult {
	return ScrapeResult{
		Success: true,
		Message: message,
		Data:    &fields,
		Domains: []string{},
	}
}

// FailedResult turns an error into a failed result.
func FailedResult(err error) ScrapeResult {
	se := AsScrapeError(err)
	return ScrapeResult{
		Success: false,
		Message: se.Message,
		Domains: []string{},
		Code:    se.Code,
	}
}
