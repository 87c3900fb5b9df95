// Package export renders the home panel as a JSON snapshot for scripts and
// agents ("robot" mode).
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/activitystream/pkg/metrics"
	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/ui"
	"github.com/vanderheijden86/activitystream/pkg/version"
)

// PanelSnapshot is the robot view of a loaded panel.
type PanelSnapshot struct {
	GeneratedAt     string                `json:"generated_at"`
	Version         string                `json:"version"`
	Database        string                `json:"database,omitempty"`
	WidthColumns    int                   `json:"width_columns"`
	ContainerPoints float64               `json:"container_points"`
	Generation      uint64                `json:"generation"`
	Carousel        CarouselSnapshot      `json:"carousel"`
	TopSites        []ui.TopSiteItem      `json:"top_sites"`
	Highlights      []model.Site          `json:"highlights"`
	History         []model.Site          `json:"history"`
	Sections        []SectionSnapshot     `json:"sections"`
	Metrics         []metrics.TimingStats `json:"metrics,omitempty"`
}

// CarouselSnapshot records the computed carousel sizing.
type CarouselSnapshot struct {
	ItemsPerPage int     `json:"items_per_page"`
	CellWidth    float64 `json:"cell_width"`
	CellHeight   float64 `json:"cell_height"`
	Pages        int     `json:"pages"`
}

// SectionSnapshot is one list section.
type SectionSnapshot struct {
	Index        int           `json:"index"`
	Title        string        `json:"title"`
	HeaderHeight float64       `json:"header_height"`
	Rows         []RowSnapshot `json:"rows"`
}

// RowSnapshot is one list row and the kind it renders as.
type RowSnapshot struct {
	Kind  ui.RowKind `json:"kind"`
	URL   string     `json:"url,omitempty"`
	Title string     `json:"title,omitempty"`
}

// Options controls what a snapshot includes.
type Options struct {
	Database       string
	IncludeMetrics bool
	Now            func() time.Time
}

// Load configures the panel, runs its queries concurrently and applies the
// results in display order, the way the update loop would.
func Load(ctx context.Context, p *ui.Panel) error {
	// Init registers the row kinds; its batched loads are not run.
	_ = p.Init()
	g, ctx := errgroup.WithContext(ctx)
	cmds := p.LoadsContext(ctx)
	msgs := make([]tea.Msg, len(cmds))

	for i, cmd := range cmds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			msgs[i] = cmd()
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading panel: %w", err)
	}

	for _, msg := range msgs {
		p.Update(msg)
	}
	return nil
}

// Snapshot captures the panel's current datasets, sizing and rows.
func Snapshot(p *ui.Panel, opts Options) PanelSnapshot {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	width, _ := p.Size()
	c := p.Carousel()
	size := c.ItemSize()

	snap := PanelSnapshot{
		GeneratedAt:     now().UTC().Format(time.RFC3339),
		Version:         version.Version,
		Database:        opts.Database,
		WidthColumns:    width,
		ContainerPoints: p.ContainerWidth(),
		Generation:      p.Generation(),
		Carousel: CarouselSnapshot{
			ItemsPerPage: c.ContentPerPage(),
			CellWidth:    size.Width,
			CellHeight:   size.Height,
			Pages:        c.PageCount(),
		},
		TopSites:   nonNil(p.TopSites()),
		Highlights: nonNil(p.Highlights()),
		History:    nonNil(p.History()),
	}

	for s := 0; s < p.SectionCount(); s++ {
		sec := SectionSnapshot{
			Index:        s,
			Title:        p.SectionHeaderTitle(s),
			HeaderHeight: p.SectionHeaderHeight(s),
			Rows:         []RowSnapshot{},
		}
		for r := 0; r < p.RowCount(s); r++ {
			content := p.RowContent(s, r)
			row := RowSnapshot{Kind: content.Kind}
			if content.Kind == ui.RowKindTopSites {
				row.Title = content.Header
			} else {
				row.URL = content.Site.NavigationURL()
				row.Title = content.Site.DisplayTitle()
			}
			sec.Rows = append(sec.Rows, row)
		}
		snap.Sections = append(snap.Sections, sec)
	}

	if opts.IncludeMetrics && metrics.Enabled() {
		snap.Metrics = metrics.AllTimingStats()
	}
	return snap
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Write encodes snap as indented JSON.
func Write(w io.Writer, snap PanelSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
