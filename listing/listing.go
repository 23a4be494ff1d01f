// Package listing provides access to the directory listings being enhanced
// and to the metadata written back to them.
package listing

import (
	"context"
	"errors"
	"time"

	"github.com/use-agent/gpd-enhance/models"
)

// Meta keys. MetaWebsite is owned by the directory; the scraped keys are
// written by this service.
const (
	MetaWebsite            = "_gpd_website"
	MetaScrapedPageTitle   = "scraped_page_title"
	MetaScrapedFirstH1     = "scraped_first_h1"
	MetaScrapedDescription = "scraped_meta_description"
	MetaLastScraped        = "last_scraped_timestamp"
)

// TimestampLayout is the UTC layout of MetaLastScraped.
const TimestampLayout = "2006-01-02 15:04:05"

// Post types a listing may have to be enhanced.
const (
	PostTypePlace    = "gd_place"
	PostTypeBusiness = "business"
)

// ErrNotFound is returned when a listing does not exist.
var ErrNotFound = errors.New("listing not found")

// Listing is one directory entry.
type Listing struct {
	ID       int64
	PostType string
	Title    string
	Meta     map[string]string
}

// Website returns the stored primary website URL, or "".
func (l *Listing) Website() string {
	return l.Meta[MetaWebsite]
}

// Enhanceable reports whether the listing's post type is one we scrape for.
func (l *Listing) Enhanceable() bool {
	return l.PostType == PostTypePlace || l.PostType == PostTypeBusiness
}

// Store persists listings and their metadata.
type Store interface {
	// Get returns the listing with its metadata, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Listing, error)

	// Upsert creates or updates the listing row. Meta entries in l are
	// written too; existing keys not present in l.Meta are kept.
	Upsert(ctx context.Context, l *Listing) error

	// SetMeta writes the given keys for an existing listing, last write wins.
	SetMeta(ctx context.Context, id int64, values map[string]string) error

	Close() error
}

// SaveInsights writes the sanitized fields and the scrape timestamp.
//
// Callers decide whether the fields are worth saving; see
// models.ExtractedFields.HasAny.
func SaveInsights(ctx context.Context, s Store, id int64, fields models.ExtractedFields, at time.Time) error {
	return s.SetMeta(ctx, id, map[string]string{
		MetaScrapedPageTitle:   SanitizeText(fields.PageTitle),
		MetaScrapedFirstH1:     SanitizeText(fields.FirstH1),
		MetaScrapedDescription: SanitizeTextarea(fields.MetaDescription),
		MetaLastScraped:        at.UTC().Format(TimestampLayout),
	})
}
