// Package history declares the browsing-history service contracts consumed by
// the home panel and its host.
package history

import (
	"context"
	"errors"

	"github.com/vanderheijden86/activitystream/pkg/model"
)

// ErrNoData reports a query that returned nothing usable. Callers treat it
// the same as any other failure: no update.
var ErrNoData = errors.New("history: no data")

// Provider answers the three ranked queries the panel issues.
// Implementations must be safe for concurrent use.
type Provider interface {
	// TopSites returns at most n sites, one per domain, ranked by frecency.
	TopSites(ctx context.Context, n int) ([]model.Site, error)
	// SitesByLastVisit returns at most n sites, most recently visited first.
	SitesByLastVisit(ctx context.Context, n int) ([]model.Site, error)
	// SitesByFrecency returns at most n sites ranked by frecency.
	SitesByFrecency(ctx context.Context, n int) ([]model.Site, error)
}

// Recorder stores navigations requested by the host.
type Recorder interface {
	RecordVisit(ctx context.Context, url, title string, vt model.VisitType) error
}

// Store is a provider that can also record visits.
type Store interface {
	Provider
	Recorder
}
