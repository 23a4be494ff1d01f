package sources

import (
	"context"

	"github.com/use-agent/gpd-enhance/listing"
	"github.com/use-agent/gpd-enhance/models"
)

// WebsiteExtractor is what the primary website source needs from the extractor.
type WebsiteExtractor interface {
	Extract(ctx context.Context, rawURL string) models.ScrapeResult
}

type website struct {
	ex WebsiteExtractor
}

// NewWebsite returns the primary website source backed by ex.
func NewWebsite(ex WebsiteExtractor) Source {
	return &website{ex: ex}
}

func (w *website) Name() Name { return PrimaryWebsite }

func (w *website) Scrape(ctx context.Context, req models.ScrapeRequest, _ []string) models.ScrapeResult {
	if req.Website == "" {
		return models.FailedResult(models.NewScrapeError(models.ErrCodeConfigMissing,
			"Primary website URL is not set for this listing (meta key: "+listing.MetaWebsite+").", nil))
	}
	return w.ex.Extract(ctx, req.Website)
}
