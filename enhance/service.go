// Package enhance ties listings, sources and persistence together for one
// enhancement request.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/gpd-enhance/config"
	"github.com/use-agent/gpd-enhance/listing"
	"github.com/use-agent/gpd-enhance/models"
	"github.com/use-agent/gpd-enhance/sources"
	"github.com/use-agent/gpd-enhance/webhook"
)

const (
	msgAllSourcesOK     = "All sources scraped successfully."
	msgSomeSourceFailed = "One or more sources failed to scrape."
)

// Notifier receives events after listings are enhanced.
type Notifier interface {
	Notify(eventType string, listingID int64, data any)
}

// Service runs enhancement operations against stored listings.
type Service struct {
	store    listing.Store
	registry *sources.Registry
	notifier Notifier
	cfg      config.EnhanceConfig

	now func() time.Time
}

// New creates a Service. notifier may be nil.
func New(store listing.Store, registry *sources.Registry, notifier Notifier, cfg config.EnhanceConfig) *Service {
	if cfg.AutoScrapeTimeout <= 0 {
		cfg.AutoScrapeTimeout = 30 * time.Second
	}
	return &Service{
		store:    store,
		registry: registry,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Registry returns the source registry the service runs.
func (s *Service) Registry() *sources.Registry { return s.registry }

// target loads the listing and checks it is one we enhance.
func (s *Service) target(ctx context.Context, listingID int64) (*listing.Listing, error) {
	if listingID <= 0 {
		return nil, invalidTarget("")
	}
	l, err := s.store.Get(ctx, listingID)
	if errors.Is(err, listing.ErrNotFound) {
		return nil, invalidTarget("")
	}
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to load listing", err)
	}
	if !l.Enhanceable() {
		return nil, invalidTarget(l.PostType)
	}
	return l, nil
}

func invalidTarget(postType string) error {
	return models.NewScrapeError(models.ErrCodeInvalidTarget,
		fmt.Sprintf("Invalid Post ID or Post Type. Expected %s or %s. (Received: %s)",
			listing.PostTypePlace, listing.PostTypeBusiness, postType), nil)
}

// ScrapeAllSources runs either the single named source or, when source is
// empty, every source in sources.AllSourcesOrder.
//
// Per-source failures are part of the response. An error is returned only
// when the request itself is rejected.
func (s *Service) ScrapeAllSources(ctx context.Context, listingID int64, source string) (*models.SourcesResponse, error) {
	names := sources.AllSourcesOrder
	if source != "" {
		name, err := s.registry.ParseName(source)
		if err != nil {
			return nil, err
		}
		names = []sources.Name{name}
	}

	l, err := s.target(ctx, listingID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, ok := s.registry.Run(ctx, models.ScrapeRequest{ListingID: l.ID, Website: l.Website()}, names)

	resp := &models.SourcesResponse{Success: ok, Message: msgSomeSourceFailed, Results: results}
	if ok {
		resp.Message = msgAllSourcesOK
	}

	slog.Info("sources scraped",
		"listing_id", l.ID,
		"sources", len(names),
		"success", ok,
		"elapsed", time.Since(start).String(),
	)
	s.notify(webhook.EventSourcesScraped, l.ID, resp)
	return resp, nil
}

// ScrapeInsights scrapes the listing's primary website and stores the
// fields when at least one of them was found. Stored values are never
// replaced by an all "Not found" result.
func (s *Service) ScrapeInsights(ctx context.Context, listingID int64) (*models.InsightsResponse, error) {
	l, err := s.target(ctx, listingID)
	if err != nil {
		return nil, err
	}

	results, _ := s.registry.Run(ctx,
		models.ScrapeRequest{ListingID: l.ID, Website: l.Website()},
		[]sources.Name{sources.PrimaryWebsite})
	res, _ := results.Get(string(sources.PrimaryWebsite))

	resp := &models.InsightsResponse{Success: res.Success, Message: res.Message, Code: res.Code}
	if !res.Success || res.Data == nil {
		resp.Success = false
		return resp, nil
	}
	resp.Data = res.Data

	if res.Data.HasAny() {
		if err := listing.SaveInsights(ctx, s.store, l.ID, *res.Data, s.now()); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to save scraped data", err)
		}
		resp.Saved = true
		s.notify(webhook.EventInsightsSaved, l.ID, res.Data)
	}

	slog.Info("insights scraped",
		"listing_id", l.ID,
		"url", l.Website(),
		"saved", resp.Saved,
	)
	return resp, nil
}

// BusinessProcessed handles the host directory's notification that a
// listing was created or updated. With auto-scrape enabled it starts a
// primary website scrape that outlives ctx.
func (s *Service) BusinessProcessed(ctx context.Context, listingID int64, isUpdate bool) {
	slog.Info("business processed",
		"listing_id", listingID,
		"is_update", isUpdate,
		"auto_scrape", s.cfg.AutoScrape,
	)
	if !s.cfg.AutoScrape {
		return
	}

	runCtx := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(runCtx, s.cfg.AutoScrapeTimeout)
		defer cancel()
		if _, err := s.ScrapeInsights(ctx, listingID); err != nil {
			slog.Warn("auto-scrape rejected", "listing_id", listingID, "error", err)
		}
	}()
}

func (s *Service) notify(eventType string, listingID int64, data any) {
	if s.notifier != nil {
		s.notifier.Notify(eventType, listingID, data)
	}
}
