package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/activitystream/pkg/model"
)

// fakeProvider serves canned results and records the limits it was asked for.
type fakeProvider struct {
	mu      sync.Mutex
	top     []model.Site
	recent  []model.Site
	frecent []model.Site
	err     error
	limits  map[string]int
}

func (f *fakeProvider) record(name string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limits == nil {
		f.limits = make(map[string]int)
	}
	f.limits[name] = n
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.limits)
}

func (f *fakeProvider) TopSites(_ context.Context, n int) ([]model.Site, error) {
	f.record("top", n)
	return f.top, f.err
}

func (f *fakeProvider) SitesByLastVisit(_ context.Context, n int) ([]model.Site, error) {
	f.record("recent", n)
	return f.recent, f.err
}

func (f *fakeProvider) SitesByFrecency(_ context.Context, n int) ([]model.Site, error) {
	f.record("frecent", n)
	return f.frecent, f.err
}

type recordedVisit struct {
	url   string
	title string
	vt    model.VisitType
}

type fakeRecorder struct {
	mu     sync.Mutex
	visits []recordedVisit
	err    error
}

func (r *fakeRecorder) RecordVisit(_ context.Context, url, title string, vt model.VisitType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, recordedVisit{url: url, title: title, vt: vt})
	return r.err
}

// runCmd executes cmd and any batched commands, returning the non-nil
// messages in order.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// feed runs cmd and applies every resulting message to the panel.
func feed(p *Panel, cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		p.Update(msg)
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
