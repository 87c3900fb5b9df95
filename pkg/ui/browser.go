package ui

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/activitystream/pkg/debug"
	"github.com/vanderheijden86/activitystream/pkg/history"
	"github.com/vanderheijden86/activitystream/pkg/i18n"
	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/watcher"
)

// DefaultStatusTimeout is how long a status message stays visible.
const DefaultStatusTimeout = 4 * time.Second

// Opener launches a URL outside the terminal.
type Opener func(url string) error

// SystemOpener opens target with the platform's default handler. It does
// nothing when AS_NO_BROWSER is set.
func SystemOpener(target string) error {
	if os.Getenv("AS_NO_BROWSER") != "" {
		return nil
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

// Browser is the root model hosting the home panel. It handles the panel's
// navigation requests by recording a visit and opening the URL.
type Browser struct {
	panel    *Panel
	recorder history.Recorder
	watcher  *watcher.Watcher
	opener   Opener
	clip     func(string) error

	keys     KeyMap
	help     help.Model
	location textinput.Model
	theme    Theme
	loc      *i18n.Localizer

	locating bool
	showHelp bool
	helpView string

	status        string
	statusID      int
	statusTimeout time.Duration
	dbLabel       string

	lastOpened OpenURLMsg
	width      int
	height     int
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithRecorder records visits for opened URLs.
func WithRecorder(r history.Recorder) BrowserOption {
	return func(b *Browser) { b.recorder = r }
}

// WithWatcher reloads the panel when the watched database changes.
func WithWatcher(w *watcher.Watcher) BrowserOption {
	return func(b *Browser) { b.watcher = w }
}

// WithOpener sets how URLs are launched. Nil disables launching.
func WithOpener(o Opener) BrowserOption {
	return func(b *Browser) { b.opener = o }
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(fn func(string) error) BrowserOption {
	return func(b *Browser) {
		if fn != nil {
			b.clip = fn
		}
	}
}

// WithStatusTimeout sets how long status messages stay visible.
func WithStatusTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		if d > 0 {
			b.statusTimeout = d
		}
	}
}

// WithDatabaseLabel shows the database path in the footer.
func WithDatabaseLabel(path string) BrowserOption {
	return func(b *Browser) { b.dbLabel = path }
}

// WithBrowserLocalizer sets the localizer for status messages.
func WithBrowserLocalizer(l *i18n.Localizer) BrowserOption {
	return func(b *Browser) {
		if l != nil {
			b.loc = l
		}
	}
}

// NewBrowser returns a Browser owning panel.
func NewBrowser(panel *Panel, opts ...BrowserOption) Browser {
	if panel == nil {
		panic("ui: NewBrowser requires a panel")
	}
	ti := textinput.New()
	ti.Placeholder = "https://"
	ti.CharLimit = 2048

	b := Browser{
		panel:    panel,
		opener:   SystemOpener,
		clip:     clipboard.WriteAll,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		location: ti,
		theme:    panel.theme,
		loc:      panel.loc,
		width:    80,
		height:   24,

		statusTimeout: DefaultStatusTimeout,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Panel returns the hosted panel.
func (b Browser) Panel() *Panel { return b.panel }

// Status returns the current status line.
func (b Browser) Status() string { return b.status }

// LastOpened returns the most recent navigation request.
func (b Browser) LastOpened() OpenURLMsg { return b.lastOpened }

// Init starts the panel loads and, when configured, the database watcher.
func (b Browser) Init() tea.Cmd {
	cmds := []tea.Cmd{b.panel.Init()}
	if b.watcher != nil {
		cmds = append(cmds, WatchHistoryCmd(b.watcher))
	}
	return tea.Batch(cmds...)
}

// chromeLines is the footer height below the panel.
const chromeLines = 3

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.help.Width = msg.Width
		b.location.Width = msg.Width - 8
		b.panel.SetSize(msg.Width, msg.Height-chromeLines)
		if b.showHelp {
			b.helpView = b.renderHelp()
		}
		return b, nil

	case OpenURLMsg:
		return b.open(msg)

	case VisitRecordedMsg:
		if msg.Err != nil {
			debug.Log("record visit %s: %v", msg.URL, msg.Err)
			return b.setStatus(b.loc.T(i18n.RecordFailed, msg.Err))
		}
		if b.watcher == nil {
			return b, b.panel.Reload()
		}
		return b, nil

	case HistoryChangedMsg:
		cmds := []tea.Cmd{b.panel.Reload()}
		if b.watcher != nil {
			cmds = append(cmds, WatchHistoryCmd(b.watcher))
		}
		return b, tea.Batch(cmds...)

	case statusClearMsg:
		if msg.id == b.statusID {
			b.status = ""
		}
		return b, nil

	case tea.KeyMsg:
		return b.handleKey(msg)
	}

	return b, b.panel.Update(msg)
}

func (b Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if b.locating {
		switch {
		case key.Matches(msg, b.keys.Cancel):
			b.locating = false
			b.location.Blur()
			b.location.Reset()
			return b, nil
		case msg.Type == tea.KeyEnter:
			target := NormalizeLocation(b.location.Value())
			b.locating = false
			b.location.Blur()
			b.location.Reset()
			if target == "" {
				return b, nil
			}
			return b, func() tea.Msg {
				return OpenURLMsg{URL: target, VisitType: model.VisitTyped}
			}
		}
		var cmd tea.Cmd
		b.location, cmd = b.location.Update(msg)
		return b, cmd
	}

	if b.showHelp {
		switch {
		case key.Matches(msg, b.keys.Help), key.Matches(msg, b.keys.Cancel):
			b.showHelp = false
			return b, nil
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		}
		return b, nil
	}

	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Help):
		b.showHelp = true
		b.helpView = b.renderHelp()
		return b, nil
	case key.Matches(msg, b.keys.Location):
		b.locating = true
		return b, b.location.Focus()
	case key.Matches(msg, b.keys.Copy):
		u, ok := b.panel.Selected()
		if !ok {
			return b, nil
		}
		if err := b.clip(u); err != nil {
			return b.setStatus(b.loc.T(i18n.CopyFailed, err))
		}
		return b.setStatus(b.loc.T(i18n.Copied, u))
	case key.Matches(msg, b.keys.Reload):
		m, clearCmd := b.setStatus(b.loc.T(i18n.Reloading))
		return m, tea.Batch(clearCmd, b.panel.Reload())
	}
	return b, b.panel.Update(msg)
}

// open handles a navigation request from the panel or the location prompt.
func (b Browser) open(msg OpenURLMsg) (tea.Model, tea.Cmd) {
	b.lastOpened = msg
	m, clearCmd := b.setStatus(b.loc.T(i18n.Opened, msg.URL))
	cmds := []tea.Cmd{clearCmd}

	if b.recorder != nil {
		rec := b.recorder
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), DefaultQueryTimeout)
			defer cancel()
			return VisitRecordedMsg{URL: msg.URL, Err: rec.RecordVisit(ctx, msg.URL, msg.Title, msg.VisitType)}
		})
	}
	if b.opener != nil {
		opener := b.opener
		cmds = append(cmds, func() tea.Msg {
			if err := opener(msg.URL); err != nil {
				debug.Log("open %s: %v", msg.URL, err)
			}
			return nil
		})
	}
	return m, tea.Batch(cmds...)
}

// setStatus shows s and schedules it to clear.
func (b Browser) setStatus(s string) (Browser, tea.Cmd) {
	b.statusID++
	b.status = s
	id := b.statusID
	return b, tea.Tick(b.statusTimeout, func(time.Time) tea.Msg { return statusClearMsg{id: id} })
}

// helpMarkdown lists the key bindings as a markdown table.
func (b Browser) helpMarkdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n| Key | Action |\n|---|---|\n", b.loc.T(i18n.HelpTitle))
	for _, group := range b.keys.FullHelp() {
		for _, k := range group {
			h := k.Help()
			fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	return sb.String()
}

func (b Browser) renderHelp() string {
	md := b.helpMarkdown()
	wrap := b.width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// NormalizeLocation turns typed input into a URL. Input without a scheme
// gets https://. Blank input yields "".
func NormalizeLocation(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return s
	}
	return "https://" + s
}

func (b Browser) View() string {
	if b.showHelp {
		return PanelStyle.Width(b.width - 2).Render(b.helpView)
	}

	body := b.panel.View()
	if b.locating {
		prompt := FocusedPanelStyle.Width(b.width - 2).Render(
			b.theme.PrimaryBold.Render(b.loc.T(i18n.OpenLocation)) + "\n" + b.location.View(),
		)
		body = lipgloss.JoinVertical(lipgloss.Left, body, prompt)
	}

	footer := b.help.View(b.keys)
	if b.dbLabel != "" {
		footer += "  " + b.theme.MutedText.Render(truncate(b.loc.T(i18n.DatabaseLabel, b.dbLabel), b.width/3))
	}
	status := b.status
	if status != "" && b.lastOpened.URL != "" {
		status = RenderVisitBadge(b.theme, b.lastOpened.VisitType.String()) + " " + status
	}
	status = b.theme.Status.Render(truncate(status, b.width))
	return lipgloss.JoinVertical(lipgloss.Left, body, RenderDivider(b.width), status, footer)
}
