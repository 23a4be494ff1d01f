// Package extractor fetches a listing's website and pulls the page title,
// first heading and meta description out of it.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/models"
)

// Extractor is safe for concurrent use. Build one at startup and share it.
type Extractor struct {
	fetcher *fetcher
}

// New creates an Extractor with the given fetch settings.
func New(cfg config.FetchConfig) *Extractor {
	return &Extractor{fetcher: newFetcher(cfg)}
}

// Extract runs the full pipeline for one website and always returns a
// result; failures are reported in it rather than as errors.
//
// Flow:
//  1. Reject an empty URL.
//  2. Prepend http:// if no scheme, then validate.
//  3. GET with timeout and redirect cap; require 200 and a non-empty body.
//  4. Parse tolerantly and extract the three fields.
func (e *Extractor) Extract(ctx context.Context, rawURL string) models.ScrapeResult {
	target, fields, err := e.extract(ctx, rawURL)
	if err != nil {
		slog.Warn("website scrape failed", "url", rawURL, "error", err)
		return models.FailedResult(err)
	}

	if !fields.HasAny() {
		slog.Info("website scraped without data", "url", target)
		return models.SucceededResult(fmt.Sprintf(
			"Scraped, but no specific data (title, H1, meta description) found from %s. "+
				"Website might be structured differently or use JavaScript rendering.", target), fields)
	}

	slog.Info("website scraped", "url", target)
	return models.SucceededResult(fmt.Sprintf("Successfully scraped data from %s.", target), fields)
}

func (e *Extractor) extract(ctx context.Context, rawURL string) (string, models.ExtractedFields, error) {
	target, err := resolveTarget(rawURL)
	if err != nil {
		return "", models.ExtractedFields{}, err
	}

	body, err := e.fetcher.fetch(ctx, target)
	if err != nil {
		return target, models.ExtractedFields{}, err
	}

	fields, err := ParseFields(body)
	if err != nil {
		return target, models.ExtractedFields{}, models.NewScrapeError(models.ErrCodeParseFailed,
			fmt.Sprintf("Could not parse HTML content from %s.", target), err)
	}
	return target, fields, nil
}
