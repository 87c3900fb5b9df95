package datasource

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/testutil"
)

// makeDB creates a history database with n sites at path.
func makeDB(t *testing.T, path string, n int) {
	t.Helper()
	s, err := Open(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	for _, site := range testutil.QuickSites(n) {
		if err := s.RecordVisitAt(context.Background(), site.URL, site.Title, model.VisitLink, site.LastVisit); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverSources_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	flagPath := filepath.Join(dir, "flag.db")
	defaultPath := filepath.Join(dir, "default.db")
	makeDB(t, defaultPath, 2)

	var logs []string
	sources := DiscoverSources(DiscoveryOptions{
		DefaultPath: defaultPath,
		FlagPath:    flagPath,
		Logger:      func(msg string) { logs = append(logs, msg) },
	})

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Kind != SourceFlag || sources[1].Kind != SourceDefault {
		t.Errorf("order = %s,%s, want flag,default", sources[0].Kind, sources[1].Kind)
	}
	if sources[0].Exists || sources[0].Valid {
		t.Errorf("missing flag path should be neither existing nor valid: %+v", sources[0])
	}
	if !sources[1].Exists || !sources[1].Valid || sources[1].SiteCount != 2 {
		t.Errorf("default source = %+v", sources[1])
	}
	if len(logs) != 0 {
		t.Errorf("unexpected log messages: %v", logs)
	}
}

func TestSelectSource_PrefersExistingValid(t *testing.T) {
	sources := []DataSource{
		{Kind: SourceFlag, Path: "/missing.db", Priority: PriorityFlag},
		{Kind: SourceDefault, Path: "/default.db", Priority: PriorityDefault, Exists: true, Valid: true},
	}
	got, err := SelectSource(sources)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != SourceDefault {
		t.Errorf("selected %s, want default", got.Kind)
	}
}

func TestSelectSource_FallsBackToMissing(t *testing.T) {
	sources := []DataSource{
		{Kind: SourceEnv, Path: "/broken.db", Priority: PriorityEnv, Exists: true},
		{Kind: SourceDefault, Path: "/new.db", Priority: PriorityDefault},
	}
	got, err := SelectSource(sources)
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "/new.db" {
		t.Errorf("selected %s, want /new.db", got.Path)
	}
}

func TestSelectSource_NeverPicksInvalid(t *testing.T) {
	sources := []DataSource{
		{Kind: SourceFlag, Path: "/broken.db", Priority: PriorityFlag, Exists: true},
	}
	if _, err := SelectSource(sources); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("expected ErrInvalidSource, got %v", err)
	}
}

func TestValidateSource_NotHistoryDB(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "notes.db", "this is not sqlite")

	src := DataSource{Path: path, Exists: true}
	err := ValidateSource(&src)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if src.Valid || src.ValidationError == "" {
		t.Errorf("source = %+v", src)
	}
	if !strings.Contains(src.String(), "invalid") {
		t.Errorf("String() = %q", src.String())
	}
}

func TestOpenDiscovered_CreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, src, err := OpenDiscovered(DiscoveryOptions{DefaultPath: path}, DefaultOptions())
	if err != nil {
		t.Fatalf("OpenDiscovered: %v", err)
	}
	defer store.Close()

	if src.Kind != SourceDefault || src.Exists {
		t.Errorf("source = %+v", src)
	}
	if store.Path() != path {
		t.Errorf("Path = %q, want %q", store.Path(), path)
	}
}

func TestOpenDiscovered_NoCandidates(t *testing.T) {
	if _, _, err := OpenDiscovered(DiscoveryOptions{}, DefaultOptions()); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("expected ErrInvalidSource, got %v", err)
	}
}

func TestOpenDiscovered_ReadOnlyMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	_, _, err := OpenDiscovered(DiscoveryOptions{FlagPath: path}, Options{ReadOnly: true})
	if !errors.Is(err, ErrInvalidSource) {
		t.Errorf("expected ErrInvalidSource, got %v", err)
	}
}

func TestOpenDiscovered_UsesExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env.db")
	makeDB(t, envPath, 3)

	store, src, err := OpenDiscovered(DiscoveryOptions{
		EnvPath:     envPath,
		DefaultPath: filepath.Join(dir, "default.db"),
	}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if src.Kind != SourceEnv {
		t.Errorf("selected %s, want env", src.Kind)
	}
	n, _ := store.CountSites(context.Background())
	if n != 3 {
		t.Errorf("CountSites = %d, want 3", n)
	}
}
