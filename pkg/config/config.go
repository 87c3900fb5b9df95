// Package config handles loading and saving activitystream configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/activitystream/config.yaml
//   - Data:    ~/.local/share/activitystream/ (history.db)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "activitystream"

// DefaultIconURL is used for top sites that have no favicon.
const DefaultIconURL = "http://google.com"

// PanelConfig holds the query limits for the home panel.
type PanelConfig struct {
	TopSitesLimit   int    `yaml:"top_sites_limit,omitempty"`
	HistoryLimit    int    `yaml:"history_limit,omitempty"`
	HighlightsLimit int    `yaml:"highlights_limit,omitempty"`
	DefaultIconURL  string `yaml:"default_icon_url,omitempty"`
	QueryTimeoutMs  int    `yaml:"query_timeout_ms,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	PointsPerColumn float64 `yaml:"points_per_column,omitempty"` // layout points per terminal cell
	PointsPerLine   float64 `yaml:"points_per_line,omitempty"`
	Locale          string  `yaml:"locale,omitempty"` // BCP 47 tag, e.g. "en", "fr"
	OpenInBrowser   bool    `yaml:"open_in_browser,omitempty"`
}

// StorageConfig locates the history database.
type StorageConfig struct {
	DBPath string `yaml:"db_path,omitempty"`
	Watch  *bool  `yaml:"watch,omitempty"` // reload when the database changes
}

// Config is the top-level configuration for as.
type Config struct {
	Panel   PanelConfig   `yaml:"panel,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Panel: PanelConfig{
			TopSitesLimit:   10,
			HistoryLimit:    10,
			HighlightsLimit: 3,
			DefaultIconURL:  DefaultIconURL,
			QueryTimeoutMs:  5000,
		},
		UI: UIConfig{
			PointsPerColumn: 8,
			PointsPerLine:   16,
			Locale:          "en",
		},
	}
}

// ConfigDir returns the XDG config directory for as.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir returns the XDG data directory for as.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDBPath returns the history database location in the data directory.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)

	return cfg, nil
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Panel.TopSitesLimit <= 0 {
		c.Panel.TopSitesLimit = def.Panel.TopSitesLimit
	}
	if c.Panel.HistoryLimit <= 0 {
		c.Panel.HistoryLimit = def.Panel.HistoryLimit
	}
	if c.Panel.HighlightsLimit <= 0 {
		c.Panel.HighlightsLimit = def.Panel.HighlightsLimit
	}
	if strings.TrimSpace(c.Panel.DefaultIconURL) == "" {
		c.Panel.DefaultIconURL = def.Panel.DefaultIconURL
	}
	if c.Panel.QueryTimeoutMs <= 0 {
		c.Panel.QueryTimeoutMs = def.Panel.QueryTimeoutMs
	}
	if c.UI.PointsPerColumn <= 0 {
		c.UI.PointsPerColumn = def.UI.PointsPerColumn
	}
	if c.UI.PointsPerLine <= 0 {
		c.UI.PointsPerLine = def.UI.PointsPerLine
	}
	if c.UI.Locale == "" {
		c.UI.Locale = def.UI.Locale
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	return SaveTo(cfg, ConfigPath())
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// WatchEnabled reports whether live reload is on. Defaults to true.
func (c Config) WatchEnabled() bool {
	if c.Storage.Watch == nil {
		return true
	}
	return *c.Storage.Watch
}

// ResolvedDBPath returns the configured database path or the XDG default.
func (c Config) ResolvedDBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return DefaultDBPath()
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
