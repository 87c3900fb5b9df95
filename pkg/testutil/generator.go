// Package testutil provides deterministic browsing-history fixtures and
// assertions shared by store and UI tests.
package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/activitystream/pkg/model"
)

// BaseTime is the fixed "now" used by fixtures.
var BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// VisitFixture is one visit relative to the generator's base time.
type VisitFixture struct {
	Ago  time.Duration
	Type model.VisitType
}

// SiteFixture is a site and its visits.
type SiteFixture struct {
	URL    string
	Title  string
	Visits []VisitFixture
}

// VisitWriter is satisfied by the history store.
type VisitWriter interface {
	RecordVisitAt(ctx context.Context, url, title string, vt model.VisitType, at time.Time) error
}

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed      int64     // Random seed for determinism (0 = use current time)
	BaseTime  time.Time // Reference "now" (default: BaseTime)
	Domains   []string  // Host names to draw from (default: DefaultDomains)
	MaxVisits int       // Upper bound on visits per site (default 8)
	MaxAge    time.Duration
}

// DefaultDomains are real-looking hosts with a mix of www. prefixes.
var DefaultDomains = []string{
	"www.example.com",
	"news.ycombinator.com",
	"go.dev",
	"www.wikipedia.org",
	"github.com",
	"m.youtube.com",
	"blog.mozilla.org",
	"localhost",
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42, // Deterministic
		BaseTime:  BaseTime,
		Domains:   DefaultDomains,
		MaxVisits: 8,
		MaxAge:    60 * 24 * time.Hour,
	}
}

// Generator creates history fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = def.BaseTime
	}
	if len(cfg.Domains) == 0 {
		cfg.Domains = def.Domains
	}
	if cfg.MaxVisits <= 0 {
		cfg.MaxVisits = def.MaxVisits
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Now returns the generator's reference time.
func (g *Generator) Now() time.Time {
	return g.cfg.BaseTime
}

// Sites returns n sites spread across the configured domains, each with
// between one and MaxVisits visits.
func (g *Generator) Sites(n int) []SiteFixture {
	sites := make([]SiteFixture, 0, n)
	for i := 0; i < n; i++ {
		domain := g.cfg.Domains[i%len(g.cfg.Domains)]
		site := SiteFixture{
			URL:   fmt.Sprintf("https://%s/page/%d", domain, i),
			Title: fmt.Sprintf("Page %d on %s", i, domain),
		}
		visits := 1 + g.rng.Intn(g.cfg.MaxVisits)
		for v := 0; v < visits; v++ {
			site.Visits = append(site.Visits, VisitFixture{
				Ago:  time.Duration(g.rng.Int63n(int64(g.cfg.MaxAge))),
				Type: g.pickType(),
			})
		}
		sites = append(sites, site)
	}
	return sites
}

func (g *Generator) pickType() model.VisitType {
	types := []model.VisitType{model.VisitLink, model.VisitLink, model.VisitTyped, model.VisitBookmark}
	return types[g.rng.Intn(len(types))]
}

// Seed writes fixtures through w using the generator's base time.
func (g *Generator) Seed(ctx context.Context, w VisitWriter, sites []SiteFixture) error {
	return SeedAt(ctx, w, g.cfg.BaseTime, sites)
}

// SeedAt writes fixtures through w with visit times relative to now.
func SeedAt(ctx context.Context, w VisitWriter, now time.Time, sites []SiteFixture) error {
	for _, s := range sites {
		for _, v := range s.Visits {
			if err := w.RecordVisitAt(ctx, s.URL, s.Title, v.Type, now.Add(-v.Ago)); err != nil {
				return fmt.Errorf("seeding %s: %w", s.URL, err)
			}
		}
	}
	return nil
}

// QuickSites returns n plain model.Site values, newest first, for tests that
// do not need a database.
func QuickSites(n int) []model.Site {
	sites := make([]model.Site, 0, n)
	for i := 0; i < n; i++ {
		domain := DefaultDomains[i%len(DefaultDomains)]
		u := fmt.Sprintf("https://%s/page/%d", domain, i)
		sites = append(sites, model.Site{
			ID:         int64(i + 1),
			URL:        u,
			TileURL:    u,
			Title:      fmt.Sprintf("Page %d on %s", i, domain),
			LastVisit:  BaseTime.Add(-time.Duration(i) * time.Hour),
			VisitCount: i + 1,
		})
	}
	return sites
}

// Empty returns no sites.
func Empty() []model.Site {
	return []model.Site{}
}
