// +build ignore

// generate_testdata.go creates history import datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/history/small.json   (100 sites)
//   tests/testdata/history/medium.json  (1000 sites)
//   tests/testdata/history/large.json   (10000 sites)
//
// Import one with: as --import tests/testdata/history/medium.json --yes
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/activitystream/internal/datasource"
	"github.com/vanderheijden86/activitystream/pkg/model"
	"github.com/vanderheijden86/activitystream/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
}

var datasets = []datasetSpec{
	{"small", 100},
	{"medium", 1000},
	{"large", 10000},
}

func main() {
	outputDir := "tests/testdata/history"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d sites)...\n", ds.name, ds.size)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.size) // Reproducible per-size
		cfg.MaxAge = 120 * 24 * time.Hour
		gen := testutil.New(cfg)

		entries := toEntries(gen.Sites(ds.size), gen.Now())
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d visits)\n", outputPath, len(data), countVisits(entries))
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}

func toEntries(sites []testutil.SiteFixture, now time.Time) []datasource.ImportEntry {
	entries := make([]datasource.ImportEntry, 0, len(sites))
	for i, s := range sites {
		e := datasource.ImportEntry{URL: s.URL, Title: s.Title}
		for _, v := range s.Visits {
			e.Visits = append(e.Visits, datasource.ImportVisit{At: now.Add(-v.Ago), Type: v.Type})
		}
		// Every tenth site gets an icon so tiles exercise both favicon paths.
		if i%10 == 0 {
			e.Icon = &model.Favicon{URL: "https://" + hostOf(s.URL) + "/favicon.ico", Width: 32, Type: "image/x-icon"}
		}
		entries = append(entries, e)
	}
	return entries
}

func hostOf(u string) string {
	const prefix = "https://"
	rest := u[len(prefix):]
	for i, r := range rest {
		if r == '/' {
			return rest[:i]
		}
	}
	return rest
}

func countVisits(entries []datasource.ImportEntry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Visits)
	}
	return n
}
