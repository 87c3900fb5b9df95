package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/activitystream/pkg/model"
)

// AssertSiteCount verifies the expected number of sites.
func AssertSiteCount(t *testing.T, sites []model.Site, expected int) {
	t.Helper()
	if len(sites) != expected {
		t.Errorf("expected %d sites, got %d", expected, len(sites))
	}
}

// AssertURLs verifies sites are exactly the given URLs in order.
func AssertURLs(t *testing.T, sites []model.Site, urls ...string) {
	t.Helper()
	got := GetURLs(sites)
	if len(got) != len(urls) {
		t.Errorf("urls = %v, want %v", got, urls)
		return
	}
	for i := range urls {
		if got[i] != urls[i] {
			t.Errorf("urls = %v, want %v", got, urls)
			return
		}
	}
}

// AssertNoDuplicateURLs verifies all site URLs are unique.
func AssertNoDuplicateURLs(t *testing.T, sites []model.Site) {
	t.Helper()
	seen := make(map[string]bool)
	for _, s := range sites {
		if seen[s.URL] {
			t.Errorf("duplicate site URL: %s", s.URL)
		}
		seen[s.URL] = true
	}
}

// AssertAllValid verifies all sites pass validation.
func AssertAllValid(t *testing.T, sites []model.Site) {
	t.Helper()
	for i, s := range sites {
		if err := s.Validate(); err != nil {
			t.Errorf("site %d (%s) invalid: %v", i, s.URL, err)
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// TempDBPath returns a database path inside a fresh temp directory.
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.db")
}

// WriteFile writes content to name inside dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// GetURLs returns the URLs of sites in order.
func GetURLs(sites []model.Site) []string {
	urls := make([]string, len(sites))
	for i, s := range sites {
		urls[i] = s.URL
	}
	return urls
}

// ContainsAll reports whether s contains every needle.
func ContainsAll(s string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(s, n) {
			return false
		}
	}
	return true
}
