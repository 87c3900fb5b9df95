package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/activitystream/pkg/debug"
	"github.com/vanderheijden86/activitystream/pkg/frecency"
	"github.com/vanderheijden86/activitystream/pkg/history"
	"github.com/vanderheijden86/activitystream/pkg/metrics"
	"github.com/vanderheijden86/activitystream/pkg/model"
)

// ErrNotFound is returned when a site lookup matches nothing.
var ErrNotFound = errors.New("site not found")

// DefaultCandidateLimit bounds how many recently visited sites are scored for
// frecency queries.
const DefaultCandidateLimit = 500

// Options configures Store behavior.
type Options struct {
	// ReadOnly opens the database without write access.
	ReadOnly bool
	// CreateIfNotExists creates the directory, file and schema when missing.
	CreateIfNotExists bool
	// CandidateLimit overrides DefaultCandidateLimit.
	CandidateLimit int
	// Now overrides the clock used for visits and frecency.
	Now func() time.Time
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{CreateIfNotExists: true}
}

// Store is a SQLite browsing-history store. It implements history.Provider
// and history.Recorder.
type Store struct {
	db             *sql.DB
	path           string
	readOnly       bool
	candidateLimit int
	now            func() time.Time
}

var _ history.Store = (*Store)(nil)

// Open opens or creates a history database at path.
func Open(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if opts.CreateIfNotExists && !opts.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("cannot create database directory: %w", err)
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found at %s: %w", path, err)
	}

	mode := "rwc"
	switch {
	case opts.ReadOnly:
		mode = "ro"
	case !opts.CreateIfNotExists:
		mode = "rw"
	}
	dsn := fmt.Sprintf("file:%s?mode=%s&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path, mode)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:             db,
		path:           path,
		readOnly:       opts.ReadOnly,
		candidateLimit: opts.CandidateLimit,
		now:            opts.Now,
	}
	if s.candidateLimit <= 0 {
		s.candidateLimit = DefaultCandidateLimit
	}
	if s.now == nil {
		s.now = time.Now
	}

	if !opts.ReadOnly {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cannot enable WAL mode: %w", err)
		}
		if err := s.createTables(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cannot create tables: %w", err)
		}
	}

	return s, nil
}

func (s *Store) createTables() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SitesByLastVisit returns at most n sites, most recently visited first.
func (s *Store) SitesByLastVisit(ctx context.Context, n int) ([]model.Site, error) {
	defer metrics.Timer(metrics.LastVisitQuery)()
	if n <= 0 {
		return nil, nil
	}

	query := `SELECT` + siteColumns + siteJoins + `
		GROUP BY s.id
		ORDER BY last_visit DESC, s.id DESC
		LIMIT ?`
	return s.querySites(ctx, query, n)
}

// SitesByFrecency returns at most n sites ranked by frecency.
func (s *Store) SitesByFrecency(ctx context.Context, n int) ([]model.Site, error) {
	defer metrics.Timer(metrics.FrecencyQuery)()
	if n <= 0 {
		return nil, nil
	}

	ranked, err := s.rankedSites(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// TopSites returns at most n sites ranked by frecency, keeping only the best
// site per domain and skipping hidden sites.
func (s *Store) TopSites(ctx context.Context, n int) ([]model.Site, error) {
	defer metrics.Timer(metrics.TopSitesQuery)()
	if n <= 0 {
		return nil, nil
	}

	ranked, err := s.rankedSites(ctx, true)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(ranked))
	top := make([]model.Site, 0, n)
	for _, site := range ranked {
		domain := site.Domain
		if domain == "" {
			domain = domainOf(site.URL)
		}
		if seen[domain] {
			continue
		}
		seen[domain] = true
		top = append(top, site)
		if len(top) == n {
			break
		}
	}
	return top, nil
}

// rankedSites scores the most recently visited candidates and sorts them by
// frecency. Sites with a zero score are dropped.
func (s *Store) rankedSites(ctx context.Context, skipHidden bool) ([]model.Site, error) {
	where := ""
	if skipHidden {
		where = " AND s.hidden = 0"
	}
	query := `SELECT` + siteColumns + siteJoins + where + `
		GROUP BY s.id
		ORDER BY last_visit DESC, s.id DESC
		LIMIT ?`
	sites, err := s.querySites(ctx, query, s.candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return sites, nil
	}

	ids := make([]int64, len(sites))
	for i, site := range sites {
		ids[i] = site.ID
	}
	visits, err := s.recentVisits(ctx, ids, frecency.SampleSize)
	if err != nil {
		return nil, err
	}

	now := s.now()
	scored := sites[:0]
	for _, site := range sites {
		site.Frecency = frecency.Score(visits[site.ID], site.VisitCount, now)
		if site.Frecency > 0 {
			scored = append(scored, site)
		}
	}
	frecency.Rank(scored)
	return scored, nil
}

// recentVisits returns up to perSite most recent visits for each of siteIDs.
func (s *Store) recentVisits(ctx context.Context, siteIDs []int64, perSite int) (map[int64][]model.Visit, error) {
	visits := make(map[int64][]model.Visit, len(siteIDs))
	if len(siteIDs) == 0 {
		return visits, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(siteIDs)), ",")
	query := `
		SELECT site_id, visited_at, type FROM (
			SELECT site_id, visited_at, type,
				ROW_NUMBER() OVER (PARTITION BY site_id ORDER BY visited_at DESC) AS rn
			FROM visits
			WHERE site_id IN (` + placeholders + `)
		) WHERE rn <= ?`
	args := make([]any, 0, len(siteIDs)+1)
	for _, id := range siteIDs {
		args = append(args, id)
	}
	args = append(args, perSite)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.Visit
		var at int64
		var vt int
		if err := rows.Scan(&v.SiteID, &at, &vt); err != nil {
			debug.Log("datasource: skipping visit row: %v", err)
			continue
		}
		v.At = time.UnixMicro(at)
		v.Type = model.VisitType(vt)
		visits[v.SiteID] = append(visits[v.SiteID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}
	return visits, nil
}

func (s *Store) querySites(ctx context.Context, query string, args ...any) ([]model.Site, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var sites []model.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			debug.Log("datasource: skipping site row: %v", err)
			continue
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sites: %w", err)
	}
	return sites, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(r rowScanner) (model.Site, error) {
	var site model.Site
	var domain, tileURL, iconURL, iconType sql.NullString
	var iconWidth, iconLoaded sql.NullInt64
	var lastVisit int64

	err := r.Scan(
		&site.ID, &site.GUID, &site.URL, &site.Title, &domain, &tileURL,
		&iconURL, &iconWidth, &iconType, &iconLoaded,
		&lastVisit, &site.VisitCount,
	)
	if err != nil {
		return site, err
	}

	site.Domain = domain.String
	if tileURL.Valid && tileURL.String != "" {
		site.TileURL = tileURL.String
	} else {
		site.TileURL = site.URL
	}
	if iconURL.Valid && iconURL.String != "" {
		site.Icon = &model.Favicon{
			URL:  iconURL.String,
			Type: iconType.String,
		}
		if iconWidth.Valid {
			site.Icon.Width = int(iconWidth.Int64)
		}
		if iconLoaded.Valid && iconLoaded.Int64 > 0 {
			site.Icon.Loaded = time.UnixMicro(iconLoaded.Int64)
		}
	}
	site.LastVisit = time.UnixMicro(lastVisit)
	return site, nil
}

// RecordVisit stores a navigation that happened now.
func (s *Store) RecordVisit(ctx context.Context, rawURL, title string, vt model.VisitType) error {
	return s.RecordVisitAt(ctx, rawURL, title, vt, s.now())
}

// RecordVisitAt stores a navigation at the given time, creating the site if
// needed. A non-empty title replaces the stored one.
func (s *Store) RecordVisitAt(ctx context.Context, rawURL, title string, vt model.VisitType, at time.Time) error {
	defer metrics.Timer(metrics.RecordVisit)()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, err := upsertSite(ctx, tx, rawURL, title)
	if err != nil {
		return err
	}
	if !vt.IsValid() {
		vt = model.VisitUnknown
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO visits (site_id, visited_at, type) VALUES (?, ?, ?)`,
		id, at.UnixMicro(), int(vt),
	); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	return tx.Commit()
}

func upsertSite(ctx context.Context, tx *sql.Tx, rawURL, title string) (int64, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return 0, fmt.Errorf("empty url")
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO sites (guid, url, title, domain) VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = CASE WHEN excluded.title <> '' THEN excluded.title ELSE sites.title END,
			domain = excluded.domain,
			is_deleted = 0`,
		uuid.Must(uuid.NewV7()).String(), rawURL, title, domainOf(rawURL),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert site: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM sites WHERE url = ?`, rawURL).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup site: %w", err)
	}
	return id, nil
}

// SetFavicon attaches an icon to an existing site.
func (s *Store) SetFavicon(ctx context.Context, siteURL string, icon model.Favicon) error {
	if icon.URL == "" {
		return fmt.Errorf("empty favicon url")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	loaded := icon.Loaded
	if loaded.IsZero() {
		loaded = s.now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO favicons (url, width, type, loaded_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET width = excluded.width, type = excluded.type, loaded_at = excluded.loaded_at`,
		icon.URL, icon.Width, icon.Type, loaded.UnixMicro(),
	); err != nil {
		return fmt.Errorf("upsert favicon: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE sites SET favicon_id = (SELECT id FROM favicons WHERE url = ?)
		WHERE url = ?`, icon.URL, siteURL)
	if err != nil {
		return fmt.Errorf("link favicon: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, siteURL)
	}

	return tx.Commit()
}

// SetTileURL overrides the navigation target for a site.
func (s *Store) SetTileURL(ctx context.Context, siteURL, tileURL string) error {
	return s.updateSite(ctx, `UPDATE sites SET tile_url = NULLIF(?, '') WHERE url = ?`, tileURL, siteURL)
}

// SetHidden hides or restores a site in the top sites query.
func (s *Store) SetHidden(ctx context.Context, siteURL string, hidden bool) error {
	v := 0
	if hidden {
		v = 1
	}
	return s.updateSite(ctx, `UPDATE sites SET hidden = ? WHERE url = ?`, v, siteURL)
}

// DeleteSite marks a site deleted so no query returns it.
func (s *Store) DeleteSite(ctx context.Context, siteURL string) error {
	return s.updateSite(ctx, `UPDATE sites SET is_deleted = 1 WHERE url = ?`, siteURL)
}

func (s *Store) updateSite(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, args[len(args)-1])
	}
	return nil
}

// CountSites returns the count of non-deleted sites.
func (s *Store) CountSites(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sites WHERE is_deleted = 0").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LastModified returns the time of the most recent visit.
func (s *Store) LastModified(ctx context.Context) (time.Time, error) {
	var at sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(visited_at) FROM visits").Scan(&at); err != nil {
		return time.Time{}, err
	}
	if !at.Valid {
		return time.Time{}, nil
	}
	return time.UnixMicro(at.Int64), nil
}

// domainOf returns the normalized host of rawURL, or the lowercased input
// when it has no host.
func domainOf(rawURL string) string {
	if host, ok := model.NormalizedHost(rawURL); ok {
		return host
	}
	return strings.ToLower(strings.TrimSpace(rawURL))
}
