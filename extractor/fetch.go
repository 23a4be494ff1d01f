package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/models"
)

// fetcher issues the single GET behind a scrape. It never retries.
type fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

func newFetcher(cfg config.FetchConfig) *fetcher {
	maxRedirects := cfg.MaxRedirects
	return &fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent(),
		maxBody:   cfg.MaxBodyBytes,
	}
}

// fetch retrieves target and returns its body. Transport errors and non-200
// statuses are FETCH_FAILED; a 200 with no body is EMPTY_CONTENT.
func (f *fetcher) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			"Failed to fetch website: "+err.Error(), err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			"Failed to fetch website: "+err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			fmt.Sprintf("Failed to fetch website (%s). Status code: %d", target, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			"Failed to fetch website: "+err.Error(), err)
	}
	if len(body) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeEmptyContent,
			fmt.Sprintf("Fetched website content is empty (%s).", target), nil)
	}
	return body, nil
}
