// Package model defines the browsing-history entities shared by the store and the UI.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Favicon is an icon reference attached to a site.
type Favicon struct {
	URL    string    `json:"url"`
	Width  int       `json:"width,omitempty"`
	Type   string    `json:"type,omitempty"`
	Loaded time.Time `json:"loaded,omitempty"`
}

// Site is a visited URL as returned by the history store.
// The UI treats it as read-only.
type Site struct {
	ID         int64     `json:"id"`
	GUID       string    `json:"guid"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Icon       *Favicon  `json:"icon,omitempty"`
	TileURL    string    `json:"tile_url,omitempty"`
	Domain     string    `json:"domain,omitempty"`
	LastVisit  time.Time `json:"last_visit"`
	VisitCount int       `json:"visit_count"`
	Frecency   float64   `json:"frecency"`
}

// NavigationURL returns the URL to open when the site is selected.
func (s Site) NavigationURL() string {
	if s.TileURL != "" {
		return s.TileURL
	}
	return s.URL
}

// DisplayTitle returns the title, falling back to the URL when empty.
func (s Site) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return s.URL
}

// Validate checks the fields the store relies on.
func (s Site) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("site %d: empty url", s.ID)
	}
	if s.VisitCount < 0 {
		return fmt.Errorf("site %d: negative visit count %d", s.ID, s.VisitCount)
	}
	return nil
}

// Visit is a single recorded navigation to a site.
type Visit struct {
	SiteID int64     `json:"site_id"`
	At     time.Time `json:"at"`
	Type   VisitType `json:"type"`
}
