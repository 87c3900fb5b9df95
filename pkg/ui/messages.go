package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/watcher"
)

// TopSitesLoadedMsg carries the result of a top sites query.
type TopSitesLoadedMsg struct {
	Sites []model.Site
	Err   error
}

// RecentHistoryLoadedMsg carries the result of a last-visit query.
type RecentHistoryLoadedMsg struct {
	Sites []model.Site
	Err   error
}

// HighlightsLoadedMsg carries the result of a frecency query.
type HighlightsLoadedMsg struct {
	Sites []model.Site
	Err   error
}

// OpenURLMsg asks the host to navigate. It is the panel's only outward
// request and expects no reply.
type OpenURLMsg struct {
	URL       string
	Title     string
	VisitType model.VisitType
}

// VisitRecordedMsg reports the outcome of recording a navigation.
type VisitRecordedMsg struct {
	URL string
	Err error
}

// HistoryChangedMsg is sent when the history database changes on disk.
type HistoryChangedMsg struct{}

// statusClearMsg clears the status line if it still shows the given id.
type statusClearMsg struct{ id int }

// WatchHistoryCmd returns a command that waits for a database change and
// sends HistoryChangedMsg.
func WatchHistoryCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return HistoryChangedMsg{}
	}
}
