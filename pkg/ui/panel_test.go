package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/activitystream/pkg/i18n"
	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/testutil"
)

func testTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

func newTestPanel(t *testing.T, prov *fakeProvider, opts ...PanelOption) *Panel {
	t.Helper()
	opts = append([]PanelOption{
		WithTheme(testTheme()),
		WithClock(func() time.Time { return testutil.BaseTime }),
	}, opts...)
	return NewPanel(prov, opts...)
}

// loadedPanel returns an initialized panel with every load applied.
func loadedPanel(t *testing.T, prov *fakeProvider, opts ...PanelOption) *Panel {
	t.Helper()
	p := newTestPanel(t, prov, opts...)
	feed(p, p.Init())
	return p
}

func TestNewPanel_NilProviderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil provider")
		}
	}()
	NewPanel(nil)
}

func TestNewPanel_NoIO(t *testing.T) {
	prov := &fakeProvider{recent: testutil.QuickSites(3)}
	p := newTestPanel(t, prov)

	if prov.calls() != 0 {
		t.Errorf("NewPanel queried the provider %d times", prov.calls())
	}
	if len(p.TopSites()) != 0 || len(p.History()) != 0 || len(p.Highlights()) != 0 {
		t.Error("state should start empty")
	}
	if p.RowCount(SectionTopSites) != 0 || p.RowCount(SectionHighlights) != 0 {
		t.Error("rows should start empty")
	}
}

func TestPanel_InitLimits(t *testing.T) {
	prov := &fakeProvider{}
	loadedPanel(t, prov)

	want := map[string]int{"top": 10, "recent": 10, "frecent": 3}
	for name, n := range want {
		if got := prov.limits[name]; got != n {
			t.Errorf("%s limit = %d, want %d", name, got, n)
		}
	}
}

func TestPanel_CustomLimits(t *testing.T) {
	prov := &fakeProvider{}
	loadedPanel(t, prov, WithLimits(6, 20, 0))

	if prov.limits["top"] != 6 || prov.limits["recent"] != 20 || prov.limits["frecent"] != 3 {
		t.Errorf("limits = %v", prov.limits)
	}
}

func TestPanel_ListConfiguration(t *testing.T) {
	p := loadedPanel(t, &fakeProvider{})

	for _, k := range []RowKind{RowKindTopSites, RowKindHighlight, RowKindSimple} {
		if !p.list.Registered(k) {
			t.Errorf("row kind %s not registered", k)
		}
	}
	if p.list.Separators() {
		t.Error("separators should be off")
	}
	if p.list.EstimatedRowHeight() != 65 {
		t.Errorf("estimated row height = %v, want 65", p.list.EstimatedRowHeight())
	}
}

func TestPanel_SectionStructure(t *testing.T) {
	p := loadedPanel(t, &fakeProvider{})

	if p.SectionCount() != 2 {
		t.Errorf("SectionCount = %d, want 2", p.SectionCount())
	}
	if h := p.SectionHeaderHeight(0); h != 0 {
		t.Errorf("header height 0 = %v", h)
	}
	if h := p.SectionHeaderHeight(1); h != 24 {
		t.Errorf("header height 1 = %v", h)
	}
	if title := p.SectionHeaderTitle(0); title != "" {
		t.Errorf("header title 0 = %q", title)
	}
	if title := p.SectionHeaderTitle(1); title != "Highlights" {
		t.Errorf("header title 1 = %q", title)
	}
	if v := p.SectionHeaderView(0, 80); v != "" {
		t.Errorf("section 0 header view should be empty, got %q", v)
	}
}

func TestPanel_HeaderViewMatchesTitle(t *testing.T) {
	for _, locale := range []string{"en", "fr", "de"} {
		p := newTestPanel(t, &fakeProvider{}, WithLocalizer(i18n.New(locale)))
		title := p.SectionHeaderTitle(1)
		view := p.SectionHeaderView(1, 80)
		if !strings.Contains(view, title) {
			t.Errorf("%s: header view %q does not show title %q", locale, view, title)
		}
		if got := lipgloss.Height(view); got != 2 {
			t.Errorf("%s: header view height = %d lines, want 2", locale, got)
		}
	}
}

func TestPanel_TopSitesRowCount(t *testing.T) {
	prov := &fakeProvider{}
	p := loadedPanel(t, prov)
	if n := p.RowCount(0); n != 0 {
		t.Fatalf("RowCount(0) = %d with no top sites", n)
	}

	p.Update(TopSitesLoadedMsg{Sites: testutil.QuickSites(1)})
	if n := p.RowCount(0); n != 1 {
		t.Errorf("RowCount(0) = %d with one top site", n)
	}

	p.Update(TopSitesLoadedMsg{Sites: testutil.QuickSites(9)})
	if n := p.RowCount(0); n != 1 {
		t.Errorf("RowCount(0) = %d with nine top sites", n)
	}
	if p.Carousel().Len() != 9 {
		t.Errorf("carousel has %d tiles, want 9", p.Carousel().Len())
	}
}

func TestPanel_TopSiteItems(t *testing.T) {
	sites := []model.Site{
		{URL: "https://www.example.com/", TileURL: "https://www.example.com/"},
		{URL: "https://go.dev/", TileURL: "https://go.dev/", Icon: &model.Favicon{URL: "https://go.dev/favicon.ico"}},
	}
	p := loadedPanel(t, &fakeProvider{top: sites})

	items := p.TopSites()
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if items[0].Label != "example" || items[0].FaviconURL != "http://google.com" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Label != "go" || items[1].FaviconURL != "https://go.dev/favicon.ico" {
		t.Errorf("item 1 = %+v", items[1])
	}
}

func TestPanel_CarouselSizing(t *testing.T) {
	p := loadedPanel(t, &fakeProvider{top: testutil.QuickSites(8)})
	p.SetSize(80, 30)

	// 80 columns at 8 points each.
	if got := p.Carousel().ContentPerPage(); got != 6 {
		t.Errorf("ContentPerPage = %d, want 6", got)
	}
	if got := p.Carousel().ItemSize(); got != (Size{Width: 105, Height: 100}) {
		t.Errorf("ItemSize = %+v", got)
	}

	p.SetSize(40, 30)
	if got := p.Carousel().ContentPerPage(); got != 4 {
		t.Errorf("ContentPerPage at 40 columns = %d, want 4", got)
	}
}

func TestPanel_RowKindTiling(t *testing.T) {
	p := loadedPanel(t, &fakeProvider{recent: testutil.QuickSites(7)})

	if n := p.RowCount(1); n != 7 {
		t.Fatalf("RowCount(1) = %d, want 7", n)
	}
	for row := 0; row < 7; row++ {
		want := RowKindSimple
		if row == 0 || row == 3 || row == 6 {
			want = RowKindHighlight
		}
		if got := p.RowContent(1, row).Kind; got != want {
			t.Errorf("row %d kind = %s, want %s", row, got, want)
		}
	}

	top := p.RowContent(0, 0)
	if top.Kind != RowKindTopSites || top.Header != "TOP SITES" || top.Carousel != p.Carousel() {
		t.Errorf("top sites row = %+v", top)
	}
}

func TestPanel_RowsBindToHistory(t *testing.T) {
	recent := testutil.QuickSites(4)
	frecent := []model.Site{{URL: "https://frecent.example/", TileURL: "https://frecent.example/"}}
	p := loadedPanel(t, &fakeProvider{recent: recent, frecent: frecent})

	if len(p.Highlights()) != 1 {
		t.Fatalf("highlights not loaded: %v", p.Highlights())
	}
	for row := range recent {
		if got := p.RowContent(1, row).Site.URL; got != recent[row].URL {
			t.Errorf("row %d bound to %q, want history %q", row, got, recent[row].URL)
		}
	}
	if p.RowCount(1) != len(recent) {
		t.Errorf("RowCount(1) should follow history, got %d", p.RowCount(1))
	}
}

func TestPanel_RowContentOutOfRange(t *testing.T) {
	p := loadedPanel(t, &fakeProvider{recent: testutil.QuickSites(2)})

	for _, ip := range []IndexPath{{1, 2}, {1, -1}, {2, 0}} {
		if got := p.RowContent(ip.Section, ip.Row); got.Site.URL != "" || got.Carousel != nil {
			t.Errorf("RowContent(%d, %d) = %+v, want empty", ip.Section, ip.Row, got)
		}
	}
	if got := p.RowContent(1, 1).Site.URL; got == "" {
		t.Error("in-range row should still bind to history")
	}
}

// ctxProvider blocks every query until its context ends.
type ctxProvider struct{}

func (ctxProvider) TopSites(ctx context.Context, _ int) ([]model.Site, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (ctxProvider) SitesByLastVisit(ctx context.Context, _ int) ([]model.Site, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (ctxProvider) SitesByFrecency(ctx context.Context, _ int) ([]model.Site, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPanel_LoadsContextCancelsQueries(t *testing.T) {
	p := NewPanel(ctxProvider{}, WithQueryTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i, cmd := range p.LoadsContext(ctx) {
		var err error
		switch msg := cmd().(type) {
		case TopSitesLoadedMsg:
			err = msg.Err
		case RecentHistoryLoadedMsg:
			err = msg.Err
		case HighlightsLoadedMsg:
			err = msg.Err
		default:
			t.Fatalf("load %d: unexpected %T", i, msg)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("load %d: err = %v, want context.Canceled", i, err)
		}
	}
	if p.Generation() != 0 {
		t.Errorf("Generation = %d, want 0", p.Generation())
	}
}

func TestPanel_SelectRow(t *testing.T) {
	recent := testutil.QuickSites(3)
	recent[1].TileURL = "https://tile.example/"
	p := loadedPanel(t, &fakeProvider{top: testutil.QuickSites(2), recent: recent})

	if cmd := p.SelectRow(0, 0); cmd != nil {
		t.Error("selecting the top sites row should not navigate")
	}
	if cmd := p.SelectRow(1, 3); cmd != nil {
		t.Error("out of range row should not navigate")
	}
	if cmd := p.SelectRow(1, -1); cmd != nil {
		t.Error("negative row should not navigate")
	}

	for i := range recent {
		msgs := runCmd(p.SelectRow(1, i))
		if len(msgs) != 1 {
			t.Fatalf("row %d: got %d messages", i, len(msgs))
		}
		open, ok := msgs[0].(OpenURLMsg)
		if !ok {
			t.Fatalf("row %d: got %T", i, msgs[0])
		}
		if open.URL != recent[i].TileURL {
			t.Errorf("row %d: URL = %q, want %q", i, open.URL, recent[i].TileURL)
		}
		if open.VisitType != model.VisitBookmark {
			t.Errorf("row %d: visit type = %s, want bookmark", i, open.VisitType)
		}
	}
}

func TestPanel_FailedAndEmptyLoadsKeepState(t *testing.T) {
	prov := &fakeProvider{err: errors.New("database locked")}
	p := loadedPanel(t, prov)

	if len(p.TopSites()) != 0 || len(p.History()) != 0 || len(p.Highlights()) != 0 {
		t.Fatal("failed loads should leave state empty")
	}
	if p.Generation() != 0 {
		t.Errorf("Generation = %d after failed loads", p.Generation())
	}

	recent := testutil.QuickSites(2)
	p.Update(RecentHistoryLoadedMsg{Sites: recent})
	p.Update(TopSitesLoadedMsg{Sites: recent})
	p.Update(HighlightsLoadedMsg{Sites: recent[:1]})
	gen := p.Generation()

	p.Update(RecentHistoryLoadedMsg{Sites: nil})
	p.Update(RecentHistoryLoadedMsg{Sites: testutil.QuickSites(5), Err: errors.New("boom")})
	p.Update(TopSitesLoadedMsg{Sites: []model.Site{}})
	p.Update(TopSitesLoadedMsg{Err: errors.New("boom")})
	p.Update(HighlightsLoadedMsg{Sites: nil})

	testutil.AssertURLs(t, p.History(), recent[0].URL, recent[1].URL)
	if len(p.TopSites()) != 2 {
		t.Errorf("top sites changed to %d", len(p.TopSites()))
	}
	if len(p.Highlights()) != 1 {
		t.Errorf("highlights changed to %d", len(p.Highlights()))
	}
	if p.Generation() != gen {
		t.Errorf("Generation moved from %d to %d on dropped results", gen, p.Generation())
	}
}

func TestPanel_ResultsReplaceWholesale(t *testing.T) {
	p := loadedPanel(t, &fakeProvider{recent: testutil.QuickSites(5)})
	gen := p.Generation()

	next := testutil.QuickSites(2)
	p.Update(RecentHistoryLoadedMsg{Sites: next})

	testutil.AssertURLs(t, p.History(), next[0].URL, next[1].URL)
	if p.Generation() != gen+1 {
		t.Errorf("Generation = %d, want %d", p.Generation(), gen+1)
	}
}

func TestPanel_KeyNavigation(t *testing.T) {
	recent := testutil.QuickSites(3)
	top := testutil.QuickSites(3)
	p := loadedPanel(t, &fakeProvider{top: top, recent: recent})

	if c := p.Cursor(); c != (IndexPath{0, 0}) {
		t.Fatalf("cursor starts at %+v", c)
	}

	// Right moves the carousel, enter opens the tile as a link.
	p.Update(tea.KeyMsg{Type: tea.KeyRight})
	msgs := runCmd(p.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	if len(msgs) != 1 {
		t.Fatalf("got %d messages", len(msgs))
	}
	open := msgs[0].(OpenURLMsg)
	if open.URL != top[1].TileURL || open.VisitType != model.VisitLink {
		t.Errorf("carousel open = %+v", open)
	}

	// Down into history, enter opens as a bookmark visit.
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if c := p.Cursor(); c != (IndexPath{1, 1}) {
		t.Fatalf("cursor = %+v, want {1 1}", c)
	}
	msgs = runCmd(p.Update(tea.KeyMsg{Type: tea.KeyEnter}))
	open = msgs[0].(OpenURLMsg)
	if open.URL != recent[1].TileURL || open.VisitType != model.VisitBookmark {
		t.Errorf("history open = %+v", open)
	}

	// Left and right do nothing off the carousel.
	p.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if p.Carousel().SelectedIndex() != 1 {
		t.Errorf("carousel moved while cursor in history")
	}

	url, ok := p.Selected()
	if !ok || url != recent[1].TileURL {
		t.Errorf("Selected = %q, %v", url, ok)
	}
}

func TestPanel_KeysBeforeInit(t *testing.T) {
	p := newTestPanel(t, &fakeProvider{})
	p.Update(RecentHistoryLoadedMsg{Sites: testutil.QuickSites(2)})
	if cmd := p.Update(tea.KeyMsg{Type: tea.KeyDown}); cmd != nil {
		t.Error("keys before Init should be ignored")
	}
	if p.View() != "" {
		t.Error("View before Init should be empty")
	}
}

func TestPanel_View(t *testing.T) {
	empty := loadedPanel(t, &fakeProvider{})
	if v := empty.View(); !strings.Contains(v, "No history yet") {
		t.Errorf("empty view = %q", v)
	}

	recent := testutil.QuickSites(3)
	p := loadedPanel(t, &fakeProvider{top: testutil.QuickSites(2), recent: recent})
	p.SetSize(100, 60)
	v := p.View()
	for _, want := range []string{"TOP SITES", "Highlights", recent[0].Title, recent[2].Title} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
