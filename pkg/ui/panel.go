package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/activitystream/pkg/config"
	"github.com/vanderheijden86/activitystream/pkg/debug"
	"github.com/vanderheijden86/activitystream/pkg/history"
	"github.com/vanderheijden86/activitystream/pkg/i18n"
	"github.com/vanderheijden86/activitystream/pkg/metrics"
	"github.com/vanderheijden86/activitystream/pkg/model"
)

// Section indexes.
const (
	SectionTopSites   = 0
	SectionHighlights = 1
	sectionCount      = 2
)

// Default query limits.
const (
	DefaultTopSitesLimit   = 10
	DefaultHistoryLimit    = 10
	DefaultHighlightsLimit = 3
	DefaultQueryTimeout    = 5 * time.Second
)

// Panel is the activity stream home panel. It loads top sites, recent
// history and highlights from a history.Provider and lays them out as a
// carousel row followed by history rows.
//
// All state changes happen in Update, on the bubbletea event loop. Load
// commands only query the provider and return messages.
type Panel struct {
	provider history.Provider

	topSites   []TopSiteItem
	highlights []model.Site
	history    []model.Site

	carousel *Carousel
	list     *GroupedList
	keys     KeyMap
	theme    Theme
	units    Units
	loc      *i18n.Localizer

	topSitesLimit   int
	historyLimit    int
	highlightsLimit int
	defaultIconURL  string
	timeout         time.Duration
	now             func() time.Time

	width      int
	height     int
	configured bool
	generation uint64
}

// PanelOption configures a Panel.
type PanelOption func(*Panel)

// WithLimits sets the three query limits. Non-positive values keep the default.
func WithLimits(topSites, history, highlights int) PanelOption {
	return func(p *Panel) {
		if topSites > 0 {
			p.topSitesLimit = topSites
		}
		if history > 0 {
			p.historyLimit = history
		}
		if highlights > 0 {
			p.highlightsLimit = highlights
		}
	}
}

// WithDefaultIconURL sets the favicon used for top sites without one.
func WithDefaultIconURL(u string) PanelOption {
	return func(p *Panel) {
		if u != "" {
			p.defaultIconURL = u
		}
	}
}

// WithQueryTimeout bounds each provider query.
func WithQueryTimeout(d time.Duration) PanelOption {
	return func(p *Panel) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTheme sets the theme.
func WithTheme(t Theme) PanelOption {
	return func(p *Panel) { p.theme = t }
}

// WithUnits sets the point to cell conversion.
func WithUnits(u Units) PanelOption {
	return func(p *Panel) { p.units = u.normalized() }
}

// WithLocalizer sets the localizer for headers.
func WithLocalizer(l *i18n.Localizer) PanelOption {
	return func(p *Panel) {
		if l != nil {
			p.loc = l
		}
	}
}

// WithClock overrides the clock used for relative ages.
func WithClock(now func() time.Time) PanelOption {
	return func(p *Panel) {
		if now != nil {
			p.now = now
		}
	}
}

// WithConfig applies the panel and UI sections of cfg.
func WithConfig(cfg config.Config) PanelOption {
	return func(p *Panel) {
		WithLimits(cfg.Panel.TopSitesLimit, cfg.Panel.HistoryLimit, cfg.Panel.HighlightsLimit)(p)
		WithDefaultIconURL(cfg.Panel.DefaultIconURL)(p)
		WithQueryTimeout(time.Duration(cfg.Panel.QueryTimeoutMs) * time.Millisecond)(p)
		WithUnits(Units{PointsPerColumn: cfg.UI.PointsPerColumn, PointsPerLine: cfg.UI.PointsPerLine})(p)
		WithLocalizer(i18n.New(cfg.UI.Locale))(p)
	}
}

// NewPanel returns a panel reading from provider. It performs no I/O.
// A nil provider is a programming error and panics.
func NewPanel(provider history.Provider, opts ...PanelOption) *Panel {
	if provider == nil {
		panic("ui: NewPanel requires a history provider")
	}
	p := &Panel{
		provider:        provider,
		keys:            DefaultKeyMap(),
		theme:           DefaultTheme(lipgloss.DefaultRenderer()),
		units:           DefaultUnits(),
		loc:             i18n.Default(),
		topSitesLimit:   DefaultTopSitesLimit,
		historyLimit:    DefaultHistoryLimit,
		highlightsLimit: DefaultHighlightsLimit,
		defaultIconURL:  config.DefaultIconURL,
		timeout:         DefaultQueryTimeout,
		now:             time.Now,
		width:           80,
		height:          24,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.carousel = NewCarousel(p.theme, p.units)
	p.list = NewGroupedList(p, p.theme, p.units)
	p.list.SetSize(p.width, p.height)
	p.applyCarouselSizing()
	return p
}

// Init issues the three loads and configures the list.
func (p *Panel) Init() tea.Cmd {
	p.configureList()
	return p.Reload()
}

// Reload re-issues the three loads with the configured limits.
func (p *Panel) Reload() tea.Cmd {
	return tea.Batch(p.Loads()...)
}

// Loads returns the three load commands, in display order, without running
// them. Init must have been called before their results are applied.
func (p *Panel) Loads() []tea.Cmd {
	return p.LoadsContext(context.Background())
}

// LoadsContext is Loads with queries bound to ctx; cancelling ctx aborts
// queries in flight.
func (p *Panel) LoadsContext(ctx context.Context) []tea.Cmd {
	return []tea.Cmd{
		p.loadTopSites(ctx, p.topSitesLimit),
		p.loadRecentHistory(ctx, p.historyLimit),
		p.loadHighlights(ctx, p.highlightsLimit),
	}
}

func (p *Panel) configureList() {
	if p.configured {
		return
	}
	p.list.Register(RowKindSimple, SimpleRow{Theme: p.theme})
	p.list.Register(RowKindTopSites, TopSitesRow{})
	p.list.Register(RowKindHighlight, HighlightRow{Theme: p.theme, Now: p.now})
	p.list.SetSeparators(false)
	p.list.SetAutomaticRowHeight(true)
	p.list.SetEstimatedRowHeight(EstimatedRowHeight)
	p.list.SetSize(p.width, p.height)
	p.list.OnSelect(func(ip IndexPath) tea.Cmd { return p.SelectRow(ip.Section, ip.Row) })
	p.configured = true
	p.refresh()
}

// LoadTopSites queries at most limit top sites.
func (p *Panel) LoadTopSites(limit int) tea.Cmd {
	return p.loadTopSites(context.Background(), limit)
}

func (p *Panel) loadTopSites(parent context.Context, limit int) tea.Cmd {
	provider, timeout := p.provider, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		sites, err := provider.TopSites(ctx, limit)
		return TopSitesLoadedMsg{Sites: sites, Err: err}
	}
}

// LoadRecentHistory queries at most limit sites by last visit.
func (p *Panel) LoadRecentHistory(limit int) tea.Cmd {
	return p.loadRecentHistory(context.Background(), limit)
}

func (p *Panel) loadRecentHistory(parent context.Context, limit int) tea.Cmd {
	provider, timeout := p.provider, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		sites, err := provider.SitesByLastVisit(ctx, limit)
		return RecentHistoryLoadedMsg{Sites: sites, Err: err}
	}
}

// LoadHighlights queries at most limit sites by frecency.
func (p *Panel) LoadHighlights(limit int) tea.Cmd {
	return p.loadHighlights(context.Background(), limit)
}

func (p *Panel) loadHighlights(parent context.Context, limit int) tea.Cmd {
	provider, timeout := p.provider, p.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		sites, err := provider.SitesByFrecency(ctx, limit)
		return HighlightsLoadedMsg{Sites: sites, Err: err}
	}
}

// Update applies load results, resizes and handles navigation keys.
func (p *Panel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case TopSitesLoadedMsg:
		if usable("top sites", msg.Sites, msg.Err) {
			items := make([]TopSiteItem, len(msg.Sites))
			for i, s := range msg.Sites {
				items[i] = NewTopSiteItem(s, p.defaultIconURL)
			}
			p.topSites = items
			p.applyCarouselSizing()
			p.carousel.SetContent(p.topSites)
			p.invalidate()
		}
	case RecentHistoryLoadedMsg:
		if usable("recent history", msg.Sites, msg.Err) {
			p.history = msg.Sites
			p.invalidate()
		}
	case HighlightsLoadedMsg:
		if usable("highlights", msg.Sites, msg.Err) {
			p.highlights = msg.Sites
			p.invalidate()
		}
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return nil
}

// usable reports whether a load result should replace state. Failures and
// empty results are dropped and only logged.
func usable(what string, sites []model.Site, err error) bool {
	if err != nil {
		debug.Log("load %s failed: %v", what, err)
		return false
	}
	if len(sites) == 0 {
		debug.Log("load %s: %v", what, history.ErrNoData)
		return false
	}
	return true
}

func (p *Panel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !p.configured {
		return nil
	}
	onCarousel := p.list.Cursor().Section == SectionTopSites && p.RowCount(SectionTopSites) > 0
	switch {
	case key.Matches(msg, p.keys.Up):
		p.list.MoveUp()
	case key.Matches(msg, p.keys.Down):
		p.list.MoveDown()
	case key.Matches(msg, p.keys.Left) && onCarousel:
		p.carousel.Prev()
		p.refresh()
	case key.Matches(msg, p.keys.Right) && onCarousel:
		p.carousel.Next()
		p.refresh()
	case key.Matches(msg, p.keys.PageLeft) && onCarousel:
		p.carousel.PrevPage()
		p.refresh()
	case key.Matches(msg, p.keys.PageNext) && onCarousel:
		p.carousel.NextPage()
		p.refresh()
	case key.Matches(msg, p.keys.Open):
		if onCarousel {
			return p.carousel.Open()
		}
		return p.list.Select()
	}
	return nil
}

// invalidate forces a full re-render.
func (p *Panel) invalidate() {
	p.generation++
	p.refresh()
}

// refresh re-renders the list once row kinds are registered.
func (p *Panel) refresh() {
	if p.configured {
		p.list.Reload()
	}
}

// Generation counts full re-renders caused by loaded data.
func (p *Panel) Generation() uint64 { return p.generation }

// SetSize sets the panel size in cells and resizes the carousel to match.
func (p *Panel) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.width, p.height = width, height
	p.list.SetSize(width, height)
	p.applyCarouselSizing()
	p.refresh()
}

// Size returns the panel size in cells.
func (p *Panel) Size() (width, height int) { return p.width, p.height }

// ContainerWidth returns the panel width in layout points.
func (p *Panel) ContainerWidth() float64 {
	return p.units.Points(p.width)
}

func (p *Panel) applyCarouselSizing() {
	w := p.ContainerWidth()
	p.carousel.SetContentPerPage(ItemsPerPage(w))
	p.carousel.SetItemSize(CarouselCellSize(w))
}

// SectionCount is always two: top sites and highlights.
func (p *Panel) SectionCount() int { return sectionCount }

// RowCount returns one row for a non-empty carousel in section 0 and one row
// per history entry in section 1.
func (p *Panel) RowCount(section int) int {
	switch section {
	case SectionTopSites:
		if p.carousel != nil && p.carousel.Len() > 0 {
			return 1
		}
		return 0
	case SectionHighlights:
		return len(p.history)
	default:
		return 0
	}
}

// SectionHeaderHeight returns 0 for top sites and 24 for highlights.
func (p *Panel) SectionHeaderHeight(section int) float64 {
	if section == SectionHighlights {
		return HighlightsHeaderHeight
	}
	return 0
}

// SectionHeaderTitle returns "" for top sites and the localized
// "Highlights" otherwise.
func (p *Panel) SectionHeaderTitle(section int) string {
	if section == SectionTopSites {
		return ""
	}
	return p.loc.T(i18n.Highlights)
}

// SectionHeaderView renders the header for section at width columns. It
// uses the same text as SectionHeaderTitle.
func (p *Panel) SectionHeaderView(section, width int) string {
	lines := p.units.Lines(p.SectionHeaderHeight(section))
	if lines == 0 {
		return ""
	}
	title := p.theme.SecondaryText.Render(p.SectionHeaderTitle(section))
	return p.theme.Base.Width(width).Height(lines).AlignVertical(lipgloss.Bottom).Render(title)
}

// RowContent binds a row to its renderer kind and data. History rows use
// the recent history slice; every third row is a highlight row.
func (p *Panel) RowContent(section, row int) RowContent {
	if section == SectionTopSites {
		return RowContent{
			Kind:     RowKindTopSites,
			Carousel: p.carousel,
			Header:   p.loc.T(i18n.TopSites),
		}
	}
	if section != SectionHighlights || row < 0 || row >= len(p.history) {
		return RowContent{}
	}
	kind := RowKindSimple
	if row%3 == 0 {
		kind = RowKindHighlight
	}
	return RowContent{Kind: kind, Site: p.history[row]}
}

// SelectRow returns a command asking the host to open history[row]. Section
// 0 and out-of-range rows return nil; the carousel navigates on its own.
func (p *Panel) SelectRow(section, row int) tea.Cmd {
	if section != SectionHighlights || row < 0 || row >= len(p.history) {
		return nil
	}
	site := p.history[row]
	msg := OpenURLMsg{
		URL:       site.NavigationURL(),
		Title:     site.Title,
		VisitType: model.VisitBookmark,
	}
	return func() tea.Msg { return msg }
}

// View renders the panel.
func (p *Panel) View() string {
	defer metrics.Timer(metrics.PanelRender)()
	if !p.configured {
		return ""
	}
	if p.RowCount(SectionTopSites) == 0 && p.RowCount(SectionHighlights) == 0 {
		return p.theme.MutedText.Render(p.loc.T(i18n.EmptyPanel))
	}
	return p.list.View()
}

// Cursor returns the focused row.
func (p *Panel) Cursor() IndexPath { return p.list.Cursor() }

// TopSites returns the current carousel tiles.
func (p *Panel) TopSites() []TopSiteItem { return p.topSites }

// Highlights returns the last loaded frecency results.
func (p *Panel) Highlights() []model.Site { return p.highlights }

// History returns the last loaded recent history.
func (p *Panel) History() []model.Site { return p.history }

// Carousel returns the top sites carousel.
func (p *Panel) Carousel() *Carousel { return p.carousel }

// Selected returns the URL under the cursor, if any.
func (p *Panel) Selected() (string, bool) {
	c := p.list.Cursor()
	switch {
	case c.Section == SectionTopSites && p.RowCount(SectionTopSites) > 0:
		item, ok := p.carousel.Selected()
		return item.URL, ok
	case c.Section == SectionHighlights && c.Row >= 0 && c.Row < len(p.history):
		return p.history[c.Row].NavigationURL(), true
	}
	return "", false
}
