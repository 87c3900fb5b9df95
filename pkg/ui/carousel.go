package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/activitystream/pkg/metrics"
	"github.com/vanderheijden86/activitystream/pkg/model"
)

// Carousel pages a fixed-size grid of top site tiles inside one list row.
// It owns its paging and selection and opens tiles itself.
type Carousel struct {
	theme    Theme
	units    Units
	itemSize Size
	perPage  int
	content  []TopSiteItem
	selected int
}

// NewCarousel returns an empty carousel.
func NewCarousel(theme Theme, units Units) *Carousel {
	return &Carousel{
		theme:    theme,
		units:    units.normalized(),
		itemSize: Size{Width: TargetCellSide, Height: TargetCellSide},
		perPage:  MinItemsPerPage,
	}
}

// SetItemSize sets the tile size in points.
func (c *Carousel) SetItemSize(s Size) { c.itemSize = s }

// ItemSize returns the tile size in points.
func (c *Carousel) ItemSize() Size { return c.itemSize }

// SetContentPerPage sets the number of tiles per page. Values below one are
// treated as one.
func (c *Carousel) SetContentPerPage(n int) {
	if n < 1 {
		n = 1
	}
	c.perPage = n
}

// ContentPerPage returns the number of tiles per page.
func (c *Carousel) ContentPerPage() int { return c.perPage }

// SetContent replaces the tiles and resets the selection.
func (c *Carousel) SetContent(items []TopSiteItem) {
	c.content = items
	c.selected = 0
}

// Content returns the tiles.
func (c *Carousel) Content() []TopSiteItem { return c.content }

// Len returns the number of tiles.
func (c *Carousel) Len() int { return len(c.content) }

// PageCount returns the number of pages, zero when empty.
func (c *Carousel) PageCount() int {
	if len(c.content) == 0 {
		return 0
	}
	return (len(c.content) + c.perPage - 1) / c.perPage
}

// Page returns the page holding the selected tile.
func (c *Carousel) Page() int {
	return c.selected / c.perPage
}

// SelectedIndex returns the index of the selected tile.
func (c *Carousel) SelectedIndex() int { return c.selected }

// Selected returns the selected tile.
func (c *Carousel) Selected() (TopSiteItem, bool) {
	if c.selected < 0 || c.selected >= len(c.content) {
		return TopSiteItem{}, false
	}
	return c.content[c.selected], true
}

// Next moves the selection right, crossing pages.
func (c *Carousel) Next() {
	if c.selected < len(c.content)-1 {
		c.selected++
	}
}

// Prev moves the selection left, crossing pages.
func (c *Carousel) Prev() {
	if c.selected > 0 {
		c.selected--
	}
}

// NextPage jumps to the first tile of the next page.
func (c *Carousel) NextPage() {
	if p := c.Page() + 1; p < c.PageCount() {
		c.selected = p * c.perPage
	}
}

// PrevPage jumps to the first tile of the previous page.
func (c *Carousel) PrevPage() {
	if p := c.Page() - 1; p >= 0 {
		c.selected = p * c.perPage
	}
}

// Open returns a command that navigates to the selected tile.
func (c *Carousel) Open() tea.Cmd {
	item, ok := c.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return OpenURLMsg{URL: item.URL, Title: item.Label, VisitType: model.VisitLink}
	}
}

// View renders the header label, the current page of tiles and page dots.
// The selected tile is highlighted only when focused.
func (c *Carousel) View(header string, width int, focused bool) string {
	defer metrics.Timer(metrics.CarouselRender)()

	var sb strings.Builder
	sb.WriteString(c.theme.SecondaryText.Render(header))
	sb.WriteString("\n")

	if len(c.content) == 0 {
		return sb.String()
	}

	tileW := c.units.Columns(c.itemSize.Width)
	tileH := c.units.Lines(c.itemSize.Height)
	if tileW < 4 {
		tileW = 4
	}
	if tileH < 3 {
		tileH = 3
	}

	start := c.Page() * c.perPage
	end := start + c.perPage
	if end > len(c.content) {
		end = len(c.content)
	}

	tiles := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		tiles = append(tiles, c.renderTile(c.content[i], tileW, tileH, focused && i == c.selected))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
	if width > 0 && lipgloss.Width(row) > width {
		row = lipgloss.NewStyle().MaxWidth(width).Render(row)
	}
	sb.WriteString(row)

	if dots := RenderPageDots(c.theme, c.Page(), c.PageCount()); dots != "" {
		sb.WriteString("\n")
		sb.WriteString(dots)
	}
	return sb.String()
}

// renderTile draws a bordered tile of w columns and h lines.
func (c *Carousel) renderTile(item TopSiteItem, w, h int, selected bool) string {
	style := c.theme.Tile
	if selected {
		style = c.theme.TileSelected
	}
	inner := w - 2
	body := c.theme.TileGlyph.Render(monogram(item.Label)) + "\n" + truncate(item.Label, inner)
	return style.Width(inner).Height(h - 2).Render(body)
}
