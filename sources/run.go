package sources

import (
	"context"
	"log/slog"
	"slices"

	"github.com/use-agent/gpd-enhance/models"
)

// Run attempts each named source in order, one at a time, and collects
// every result. A failing source never stops the run. The returned bool is
// true only if all sources succeeded.
//
// Domains reported by a source are appended (deduplicated) to the list
// handed to the sources after it.
func (r *Registry) Run(ctx context.Context, req models.ScrapeRequest, names []Name) (*models.SourceResults, bool) {
	results := models.NewSourceResults()
	seen := []string{}
	allOK := true

	for _, name := range names {
		var res models.ScrapeResult
		if src, ok := r.Lookup(name); ok {
			res = src.Scrape(ctx, req, slices.Clone(seen))
		} else {
			res = models.FailedResult(models.NewScrapeError(models.ErrCodeNotImplemented,
				"Scraper for source '"+string(name)+"' not implemented.", nil))
		}
		if res.Domains == nil {
			res.Domains = []string{}
		}

		for _, d := range res.Domains {
			if !slices.Contains(seen, d) {
				seen = append(seen, d)
			}
		}

		slog.Debug("source finished",
			"listing_id", req.ListingID,
			"source", name,
			"success", res.Success,
			"code", res.Code,
		)
		results.Set(string(name), res)
		allOK = allOK && res.Success
	}

	return results, allOK
}
