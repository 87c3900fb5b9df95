package datasource

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/vanderheijden86/activitystream/pkg/metrics"
	"github.com/vanderheijden86/activitystream/pkg/model"
)

// ImportEntry is one site in a JSON history export.
type ImportEntry struct {
	URL     string         `json:"url"`
	Title   string         `json:"title"`
	TileURL string         `json:"tile_url,omitempty"`
	Hidden  bool           `json:"hidden,omitempty"`
	Icon    *model.Favicon `json:"icon,omitempty"`
	Visits  []ImportVisit  `json:"visits"`
}

// ImportVisit is a visit inside an ImportEntry.
type ImportVisit struct {
	At   time.Time       `json:"at"`
	Type model.VisitType `json:"type"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Sites   int
	Visits  int
	Skipped int
}

var titlePolicy = bluemonday.StrictPolicy()

// SanitizeTitle strips markup from a page title and collapses whitespace.
func SanitizeTitle(title string) string {
	clean := html.UnescapeString(titlePolicy.Sanitize(title))
	return strings.Join(strings.Fields(clean), " ")
}

// DecodeImport parses a JSON array of ImportEntry.
func DecodeImport(r io.Reader) ([]ImportEntry, error) {
	var entries []ImportEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding history import: %w", err)
	}
	return entries, nil
}

// Import writes entries into the store. Entries without a URL or visits are
// skipped; the first failing write aborts the import.
func (s *Store) Import(ctx context.Context, entries []ImportEntry) (ImportResult, error) {
	defer metrics.Timer(metrics.ImportJSON)()

	var res ImportResult
	for _, e := range entries {
		if strings.TrimSpace(e.URL) == "" || len(e.Visits) == 0 {
			res.Skipped++
			continue
		}

		title := SanitizeTitle(e.Title)
		for _, v := range e.Visits {
			at := v.At
			if at.IsZero() {
				at = s.now()
			}
			if err := s.RecordVisitAt(ctx, e.URL, title, v.Type, at); err != nil {
				return res, fmt.Errorf("importing %s: %w", e.URL, err)
			}
			res.Visits++
		}

		if e.Icon != nil && e.Icon.URL != "" {
			if err := s.SetFavicon(ctx, e.URL, *e.Icon); err != nil {
				return res, fmt.Errorf("importing icon for %s: %w", e.URL, err)
			}
		}
		if e.TileURL != "" {
			if err := s.SetTileURL(ctx, e.URL, e.TileURL); err != nil {
				return res, fmt.Errorf("importing tile url for %s: %w", e.URL, err)
			}
		}
		if e.Hidden {
			if err := s.SetHidden(ctx, e.URL, true); err != nil {
				return res, fmt.Errorf("hiding %s: %w", e.URL, err)
			}
		}
		res.Sites++
	}
	return res, nil
}

// ImportJSON decodes r and imports it into the store.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader) (ImportResult, error) {
	entries, err := DecodeImport(r)
	if err != nil {
		return ImportResult{}, err
	}
	return s.Import(ctx, entries)
}
