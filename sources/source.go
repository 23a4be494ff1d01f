// Package sources defines the named data providers tried when enhancing a
// listing and runs them in a fixed order.
package sources

import (
	"context"
	"fmt"

	"github.com/use-agent/gpd-enhance/models"
)

// Name identifies a source on the wire.
type Name string

const (
	PrimaryWebsite    Name = "primary_website"
	GooglePlaces      Name = "google_places"
	PADI              Name = "padi"
	SSI               Name = "ssi"
	Facebook          Name = "facebook"
	GoogleSearchTop10 Name = "google_search_top10"
)

// AllSourcesOrder is the run order when no single source is requested.
var AllSourcesOrder = []Name{GooglePlaces, PADI, SSI, Facebook, GoogleSearchTop10}

// Source is the interface that every data provider implements.
type Source interface {
	// Name returns the source identifier.
	Name() Name

	// Scrape attempts one listing. seenDomains holds the sites already
	// covered by earlier sources in the same run. Failures are reported in
	// the result, never as a panic or error.
	Scrape(ctx context.Context, req models.ScrapeRequest, seenDomains []string) models.ScrapeResult
}

// Registry is the static name to Source table, built once at startup.
type Registry struct {
	sources map[Name]Source
	order   []Name
}

// NewRegistry registers srcs in the given order. Duplicate names panic,
// since that is a wiring mistake.
func NewRegistry(srcs ...Source) *Registry {
	r := &Registry{sources: make(map[Name]Source, len(srcs))}
	for _, s := range srcs {
		if _, dup := r.sources[s.Name()]; dup {
			panic(fmt.Sprintf("sources: duplicate source %q", s.Name()))
		}
		r.sources[s.Name()] = s
		r.order = append(r.order, s.Name())
	}
	return r
}

// Lookup returns the source registered under name.
func (r *Registry) Lookup(name Name) (Source, bool) {
	s, ok := r.sources[name]
	return s, ok
}

// ParseName validates a source identifier received from a client.
func (r *Registry) ParseName(s string) (Name, error) {
	name := Name(s)
	if _, ok := r.sources[name]; !ok {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("Unknown source '%s'.", s), nil)
	}
	return name, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []Name {
	out := make([]Name, len(r.order))
	copy(out, r.order)
	return out
}
