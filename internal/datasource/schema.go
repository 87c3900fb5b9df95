package datasource

// schemaStatements create the history schema. Timestamps are unix microseconds.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS favicons (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		url       TEXT NOT NULL UNIQUE,
		width     INTEGER NOT NULL DEFAULT 0,
		type      TEXT NOT NULL DEFAULT '',
		loaded_at INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sites (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		guid       TEXT NOT NULL UNIQUE,
		url        TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL DEFAULT '',
		domain     TEXT NOT NULL DEFAULT '',
		tile_url   TEXT,
		favicon_id INTEGER REFERENCES favicons(id) ON DELETE SET NULL,
		hidden     INTEGER NOT NULL DEFAULT 0,
		is_deleted INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id    INTEGER NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		visited_at INTEGER NOT NULL,
		type       INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_site_time ON visits(site_id, visited_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_time ON visits(visited_at DESC)`,
}

// siteColumns is the projection shared by every site query. It must stay in
// step with scanSite.
const siteColumns = `
	s.id, s.guid, s.url, s.title, s.domain, s.tile_url,
	f.url, f.width, f.type, f.loaded_at,
	MAX(v.visited_at) AS last_visit, COUNT(v.id) AS visit_count`

const siteJoins = `
	FROM sites s
	JOIN visits v ON v.site_id = s.id
	LEFT JOIN favicons f ON f.id = s.favicon_id
	WHERE s.is_deleted = 0`
