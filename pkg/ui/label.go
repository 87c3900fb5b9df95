package ui

import (
	"strings"

	"github.com/vanderheijden86/activitystream/pkg/model"
)

// ExtractDisplayLabel derives a short tile label from a URL: the normalized
// host, or the raw string when there is none, with the last dot-separated
// segment dropped.
func ExtractDisplayLabel(rawURL string) string {
	s, ok := model.NormalizedHost(rawURL)
	if !ok {
		s = rawURL
	}
	parts := strings.Split(s, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[:len(parts)-1], ".")
	}
	return s
}

// TopSiteItem is one carousel tile.
type TopSiteItem struct {
	Label      string `json:"label"`
	FaviconURL string `json:"favicon_url"`
	URL        string `json:"url"`
}

// NewTopSiteItem builds a tile for site, using defaultIcon when the site has
// no favicon.
func NewTopSiteItem(site model.Site, defaultIcon string) TopSiteItem {
	icon := defaultIcon
	if site.Icon != nil && site.Icon.URL != "" {
		icon = site.Icon.URL
	}
	return TopSiteItem{
		Label:      ExtractDisplayLabel(site.URL),
		FaviconURL: icon,
		URL:        site.NavigationURL(),
	}
}
