package datasource

import (
	"context"
	"strings"
	"testing"

	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/testutil"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Go Documentation", "Go Documentation"},
		{"markup", "<b>Bold</b> <script>alert(1)</script>Title", "Bold Title"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"whitespace", "  lots \n\t of   space ", "lots of space"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTitle(tt.in); got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeImport_Invalid(t *testing.T) {
	if _, err := DecodeImport(strings.NewReader(`{"url": "not an array"}`)); err == nil {
		t.Fatal("expected error for non-array input")
	}
}

func TestImportJSON(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	input := `[
		{
			"url": "https://go.dev/",
			"title": "<em>The Go</em> Programming Language",
			"tile_url": "https://go.dev/learn/",
			"icon": {"url": "https://go.dev/favicon.ico", "width": 16, "type": "ico"},
			"visits": [
				{"at": "2024-12-31T12:00:00Z", "type": "typed"},
				{"at": "2024-12-30T12:00:00Z", "type": "link"}
			]
		},
		{
			"url": "https://ads.example/",
			"title": "Ads",
			"hidden": true,
			"visits": [{"at": "2024-12-31T11:00:00Z", "type": "bookmark"}]
		},
		{"url": "", "title": "no url", "visits": [{"at": "2024-12-31T11:00:00Z"}]},
		{"url": "https://novisits.example/", "title": "none", "visits": []}
	]`

	res, err := s.ImportJSON(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if res.Sites != 2 || res.Visits != 3 || res.Skipped != 2 {
		t.Errorf("result = %+v, want 2 sites, 3 visits, 2 skipped", res)
	}

	sites, err := s.SitesByLastVisit(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertURLs(t, sites, "https://go.dev/", "https://ads.example/")

	goSite := sites[0]
	if goSite.Title != "The Go Programming Language" {
		t.Errorf("title = %q", goSite.Title)
	}
	if goSite.TileURL != "https://go.dev/learn/" {
		t.Errorf("TileURL = %q", goSite.TileURL)
	}
	if goSite.Icon == nil || goSite.Icon.URL != "https://go.dev/favicon.ico" {
		t.Errorf("icon = %+v", goSite.Icon)
	}
	if goSite.VisitCount != 2 {
		t.Errorf("VisitCount = %d, want 2", goSite.VisitCount)
	}

	top, err := s.TopSites(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertURLs(t, top, "https://go.dev/")
}

func TestImport_DefaultsVisitTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, []ImportEntry{{
		URL:    "https://go.dev/",
		Visits: []ImportVisit{{Type: model.VisitLink}},
	}})
	if err != nil {
		t.Fatal(err)
	}

	last, err := s.LastModified(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !last.Equal(testutil.BaseTime) {
		t.Errorf("zero visit time should use the store clock, got %v", last)
	}
}
