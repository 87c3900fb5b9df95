package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/activitystream/pkg/model"
)

// RowKind is the closed set of row layouts the list can render.
type RowKind int

const (
	// RowKindTopSites hosts the top sites carousel.
	RowKindTopSites RowKind = iota
	// RowKindHighlight is the tall, emphasized history row.
	RowKindHighlight
	// RowKindSimple is the compact history row.
	RowKindSimple

	rowKindCount
)

func (k RowKind) String() string {
	switch k {
	case RowKindTopSites:
		return "top_sites"
	case RowKindHighlight:
		return "highlight"
	case RowKindSimple:
		return "simple"
	default:
		return fmt.Sprintf("RowKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k RowKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *RowKind) UnmarshalText(b []byte) error {
	for c := RowKind(0); c < rowKindCount; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown row kind %q", b)
}

// RowContent binds a row to its data. Site is set for history rows,
// Carousel and Header for the top sites row.
type RowContent struct {
	Kind     RowKind
	Site     model.Site
	Carousel *Carousel
	Header   string
}

// RowRenderer draws one kind of row at the given width in columns.
type RowRenderer interface {
	Render(c RowContent, width int, selected bool) string
}

// RowRendererFunc adapts a function to RowRenderer.
type RowRendererFunc func(c RowContent, width int, selected bool) string

// Render calls f.
func (f RowRendererFunc) Render(c RowContent, width int, selected bool) string {
	return f(c, width, selected)
}

// HighlightRow renders a two-line row: title, then host and age.
type HighlightRow struct {
	Theme Theme
	Now   func() time.Time
}

// Render implements RowRenderer.
func (r HighlightRow) Render(c RowContent, width int, selected bool) string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	inner := width - 3
	if inner < 1 {
		inner = 1
	}

	host, ok := model.NormalizedHost(c.Site.URL)
	if !ok {
		host = c.Site.URL
	}
	age := formatTimeRelTo(c.Site.LastVisit, now())
	meta := fmt.Sprintf("%s · %s · %d visits", host, age, c.Site.VisitCount)

	lines := []string{
		r.Theme.TitleBold.Render(truncate(c.Site.DisplayTitle(), inner)),
		r.Theme.MutedText.Render(truncate(meta, inner)),
	}
	return decorateRow(r.Theme, strings.Join(lines, "\n"), width, selected)
}

// SimpleRow renders a single-line row: title and host.
type SimpleRow struct {
	Theme Theme
}

// Render implements RowRenderer.
func (r SimpleRow) Render(c RowContent, width int, selected bool) string {
	inner := width - 3
	if inner < 1 {
		inner = 1
	}

	host, ok := model.NormalizedHost(c.Site.URL)
	if !ok {
		host = c.Site.URL
	}
	title := c.Site.DisplayTitle()
	hostWidth := lipgloss.Width(host)
	if hostWidth > inner/2 {
		hostWidth = inner / 2
	}
	titleWidth := inner - hostWidth - 1
	line := r.Theme.Base.Render(padRight(truncate(title, titleWidth), titleWidth)) + " " +
		r.Theme.InfoText.Render(truncate(host, hostWidth))
	return decorateRow(r.Theme, line, width, selected)
}

// TopSitesRow renders the carousel bound to the row.
type TopSitesRow struct{}

// Render implements RowRenderer.
func (TopSitesRow) Render(c RowContent, width int, selected bool) string {
	if c.Carousel == nil {
		return ""
	}
	return c.Carousel.View(c.Header, width, selected)
}

func decorateRow(t Theme, body string, width int, selected bool) string {
	if selected {
		return t.Selected.Width(width - 1).Render(body)
	}
	return t.Base.PaddingLeft(2).Width(width).Render(body)
}
