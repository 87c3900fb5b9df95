// Package datasource provides the SQLite browsing-history store behind the
// home panel, plus discovery of which database file to open and JSON import.
package datasource

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"
)

// ErrInvalidSource is returned when no candidate database is usable.
var ErrInvalidSource = errors.New("no valid history database")

// SourceKind identifies where a candidate path came from
type SourceKind string

const (
	// SourceFlag is a path given on the command line
	SourceFlag SourceKind = "flag"
	// SourceEnv is a path from AS_HISTORY_DB
	SourceEnv SourceKind = "env"
	// SourceConfig is a path from config.yaml
	SourceConfig SourceKind = "config"
	// SourceDefault is the XDG data directory default
	SourceDefault SourceKind = "default"
)

// Priority values for source kinds (higher = more authoritative)
const (
	PriorityFlag    = 100
	PriorityEnv     = 90
	PriorityConfig  = 80
	PriorityDefault = 50
)

// DataSource represents a candidate history database
type DataSource struct {
	// Kind identifies where the path came from
	Kind SourceKind `json:"kind"`
	// Path is the database file path
	Path string `json:"path"`
	// Priority determines preference (higher = preferred)
	Priority int `json:"priority"`
	// Exists is true when the file is present on disk
	Exists bool `json:"exists"`
	// ModTime is the last modification time of the file
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// SiteCount is the number of sites in the source (set during validation)
	SiteCount int `json:"site_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, sites=%d, %s)",
		s.Path, s.Kind, s.Priority, s.SiteCount, status)
}

// DiscoveryOptions lists the candidate paths in the order the CLI knows them.
// Empty paths are skipped.
type DiscoveryOptions struct {
	FlagPath    string
	EnvPath     string
	ConfigPath  string
	DefaultPath string
	// Logger receives log messages when set
	Logger func(msg string)
}

// DiscoverSources stats and validates every candidate, sorted by priority.
func DiscoverSources(opts DiscoveryOptions) []DataSource {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	candidates := []DataSource{
		{Kind: SourceFlag, Path: opts.FlagPath, Priority: PriorityFlag},
		{Kind: SourceEnv, Path: opts.EnvPath, Priority: PriorityEnv},
		{Kind: SourceConfig, Path: opts.ConfigPath, Priority: PriorityConfig},
		{Kind: SourceDefault, Path: opts.DefaultPath, Priority: PriorityDefault},
	}

	var sources []DataSource
	for _, c := range candidates {
		if c.Path == "" {
			continue
		}
		if info, err := os.Stat(c.Path); err == nil {
			c.Exists = true
			c.ModTime = info.ModTime()
			c.Size = info.Size()
		}
		if err := ValidateSource(&c); err != nil {
			opts.Logger(fmt.Sprintf("Validation failed for %s: %v", c.Path, err))
		}
		sources = append(sources, c)
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority > sources[j].Priority
	})
	return sources
}

// SelectSource picks the path to open. The highest-priority existing, valid
// database wins. When none exists yet, the highest-priority candidate is
// returned so the store can create it; an existing but invalid file is never
// chosen.
func SelectSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Exists && s.Valid {
			return s, nil
		}
	}
	for _, s := range sources {
		if !s.Exists {
			return s, nil
		}
	}
	return DataSource{}, ErrInvalidSource
}

// ValidateSource checks that an existing file is a readable history database.
// Missing files are left invalid without an error.
func ValidateSource(s *DataSource) error {
	s.Valid = false
	s.ValidationError = ""
	if !s.Exists {
		s.ValidationError = "does not exist"
		return nil
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", s.Path))
	if err != nil {
		s.ValidationError = err.Error()
		return err
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sites WHERE is_deleted = 0").Scan(&count); err != nil {
		s.ValidationError = fmt.Sprintf("not a history database: %v", err)
		return fmt.Errorf("%w: %s", ErrInvalidSource, s.ValidationError)
	}

	s.Valid = true
	s.SiteCount = count
	return nil
}
