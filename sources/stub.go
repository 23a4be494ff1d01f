package sources

import (
	"context"

	"github.com/use-agent/gpd-enhance/models"
)

// stub is a placeholder for a source whose extractor has not been written.
type stub struct {
	name  Name
	label string
}

// NewStub returns a source that always reports it is not implemented.
func NewStub(name Name, label string) Source {
	return &stub{name: name, label: label}
}

func (s *stub) Name() Name { return s.name }

func (s *stub) Scrape(context.Context, models.ScrapeRequest, []string) models.ScrapeResult {
	return models.FailedResult(models.NewScrapeError(models.ErrCodeNotImplemented,
		s.label+" scraping not yet implemented.", nil))
}

// Stubs returns the placeholder sources in run order.
//
// TODO: replace each with a real extractor honoring the same contract as
// PrimaryWebsite; google_search_top10 is expected to be the first to use
// seenDomains.
func Stubs() []Source {
	return []Source{
		NewStub(GooglePlaces, "Google Places"),
		NewStub(PADI, "PADI"),
		NewStub(SSI, "SSI"),
		NewStub(Facebook, "Facebook"),
		NewStub(GoogleSearchTop10, "Google Search Top 10"),
	}
}
