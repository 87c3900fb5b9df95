package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ListDataSource supplies sections and rows to a GroupedList.
type ListDataSource interface {
	SectionCount() int
	RowCount(section int) int
	// SectionHeaderHeight is in layout points; zero hides the header.
	SectionHeaderHeight(section int) float64
	SectionHeaderView(section, width int) string
	RowContent(section, row int) RowContent
}

// IndexPath addresses a row.
type IndexPath struct {
	Section int
	Row     int
}

// GroupedList is a scrollable two-axis list of sections and rows. Rows are
// drawn by renderers registered per RowKind.
type GroupedList struct {
	source    ListDataSource
	renderers [rowKindCount]RowRenderer
	units     Units
	theme     Theme

	viewport viewport.Model
	width    int
	height   int

	cursor             IndexPath
	estimatedRowHeight float64
	automaticHeight    bool
	separators         bool
	onSelect           func(IndexPath) tea.Cmd

	// rowOffsets records the first line of each rendered row, for scrolling.
	rowOffsets map[IndexPath][2]int
}

// NewGroupedList returns a list over source. No row kinds are registered.
func NewGroupedList(source ListDataSource, theme Theme, units Units) *GroupedList {
	return &GroupedList{
		source:             source,
		theme:              theme,
		units:              units.normalized(),
		viewport:           viewport.New(80, 24),
		width:              80,
		height:             24,
		estimatedRowHeight: EstimatedRowHeight,
		automaticHeight:    true,
	}
}

// Register binds a renderer to a row kind, replacing any earlier one.
func (l *GroupedList) Register(kind RowKind, r RowRenderer) {
	if kind < 0 || kind >= rowKindCount {
		panic(fmt.Sprintf("ui: cannot register unknown row kind %d", int(kind)))
	}
	l.renderers[kind] = r
}

// Registered reports whether kind has a renderer.
func (l *GroupedList) Registered(kind RowKind) bool {
	return kind >= 0 && kind < rowKindCount && l.renderers[kind] != nil
}

// SetEstimatedRowHeight sets the fallback row height in points.
func (l *GroupedList) SetEstimatedRowHeight(points float64) { l.estimatedRowHeight = points }

// EstimatedRowHeight returns the fallback row height in points.
func (l *GroupedList) EstimatedRowHeight() float64 { return l.estimatedRowHeight }

// SetAutomaticRowHeight sizes rows by their rendered content when true.
// Otherwise every row is clipped or padded to the estimated height.
func (l *GroupedList) SetAutomaticRowHeight(on bool) { l.automaticHeight = on }

// SetSeparators toggles divider lines between rows.
func (l *GroupedList) SetSeparators(on bool) { l.separators = on }

// Separators reports whether dividers are drawn.
func (l *GroupedList) Separators() bool { return l.separators }

// OnSelect sets the callback invoked by Select.
func (l *GroupedList) OnSelect(fn func(IndexPath) tea.Cmd) { l.onSelect = fn }

// SetSize fills the list to the given container size in cells.
func (l *GroupedList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.viewport.Width = width
	l.viewport.Height = height
}

// Size returns the list size in cells.
func (l *GroupedList) Size() (width, height int) { return l.width, l.height }

// Cursor returns the focused row.
func (l *GroupedList) Cursor() IndexPath { return l.cursor }

// SetCursor focuses a row, clamped to the available rows.
func (l *GroupedList) SetCursor(p IndexPath) {
	l.cursor = p
	l.clampCursor()
}

// rows lists every row in display order.
func (l *GroupedList) rows() []IndexPath {
	var out []IndexPath
	for s := 0; s < l.source.SectionCount(); s++ {
		for r := 0; r < l.source.RowCount(s); r++ {
			out = append(out, IndexPath{Section: s, Row: r})
		}
	}
	return out
}

func (l *GroupedList) clampCursor() {
	rows := l.rows()
	if len(rows) == 0 {
		l.cursor = IndexPath{}
		return
	}
	for _, p := range rows {
		if p == l.cursor {
			return
		}
	}
	// Keep the cursor in its section when possible.
	if n := l.source.RowCount(l.cursor.Section); n > 0 && l.cursor.Section < l.source.SectionCount() {
		if l.cursor.Row >= n {
			l.cursor.Row = n - 1
		}
		if l.cursor.Row < 0 {
			l.cursor.Row = 0
		}
		return
	}
	l.cursor = rows[0]
}

func (l *GroupedList) move(delta int) {
	rows := l.rows()
	if len(rows) == 0 {
		return
	}
	idx := 0
	for i, p := range rows {
		if p == l.cursor {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	l.cursor = rows[idx]
	l.Reload()
}

// MoveDown focuses the next row.
func (l *GroupedList) MoveDown() { l.move(1) }

// MoveUp focuses the previous row.
func (l *GroupedList) MoveUp() { l.move(-1) }

// Select invokes the selection callback for the focused row.
func (l *GroupedList) Select() tea.Cmd {
	if l.onSelect == nil || len(l.rows()) == 0 {
		return nil
	}
	return l.onSelect(l.cursor)
}

// Reload re-renders every row into the viewport and keeps the cursor visible.
func (l *GroupedList) Reload() {
	l.clampCursor()
	l.viewport.SetContent(l.Render())
	l.scrollToCursor()
}

// Render draws all sections without scrolling.
func (l *GroupedList) Render() string {
	l.rowOffsets = make(map[IndexPath][2]int)

	var blocks []string
	line := 0
	for s := 0; s < l.source.SectionCount(); s++ {
		rows := l.source.RowCount(s)
		if h := l.source.SectionHeaderHeight(s); h > 0 {
			header := l.source.SectionHeaderView(s, l.width)
			blocks = append(blocks, header)
			line += strings.Count(header, "\n") + 1
		}
		for r := 0; r < rows; r++ {
			p := IndexPath{Section: s, Row: r}
			body := l.renderRow(p)
			if l.separators && len(blocks) > 0 {
				blocks = append(blocks, RenderSubtleDivider(l.width))
				line++
			}
			n := strings.Count(body, "\n") + 1
			l.rowOffsets[p] = [2]int{line, n}
			blocks = append(blocks, body)
			line += n
		}
	}
	return strings.Join(blocks, "\n")
}

func (l *GroupedList) renderRow(p IndexPath) string {
	content := l.source.RowContent(p.Section, p.Row)
	if !l.Registered(content.Kind) {
		panic(fmt.Sprintf("ui: no renderer registered for row kind %s", content.Kind))
	}
	body := l.renderers[content.Kind].Render(content, l.width, p == l.cursor)
	return l.fitHeight(body)
}

// fitHeight applies the row height policy to a rendered row.
func (l *GroupedList) fitHeight(body string) string {
	estimated := l.units.Lines(l.estimatedRowHeight)
	if l.automaticHeight && body != "" {
		return body
	}
	if estimated < 1 {
		estimated = 1
	}
	lines := strings.Split(body, "\n")
	if len(lines) > estimated {
		lines = lines[:estimated]
	}
	for len(lines) < estimated {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (l *GroupedList) scrollToCursor() {
	off, ok := l.rowOffsets[l.cursor]
	if !ok {
		return
	}
	top, n := off[0], off[1]
	switch {
	case top < l.viewport.YOffset:
		l.viewport.SetYOffset(top)
	case top+n > l.viewport.YOffset+l.viewport.Height:
		l.viewport.SetYOffset(top + n - l.viewport.Height)
	}
}

// View renders the visible part of the list.
func (l *GroupedList) View() string {
	return l.viewport.View()
}
