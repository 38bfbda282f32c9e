// Package reports provides a SQLite-backed store for community-submitted ICE
// activity sightings. Reports are anonymous, unverified by default, and
// surfaced on the safety map newest-first.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Report is a single ICE activity sighting.
type Report struct {
	// ID is the database row id, rendered as a string for API clients.
	ID int64 `json:"id,string"`
	// Lat and Lon locate the sighting.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	// City is the human-readable location name.
	City string `json:"city"`
	// Date is when the sighting was reported.
	Date time.Time `json:"date"`
	// Description is optional free text from the reporter.
	Description string `json:"description,omitempty"`
	// Verified is set by moderators; submissions always start false.
	Verified bool `json:"verified"`
}

// recentLimit caps how many reports the map endpoint returns.
const recentLimit = 100

// Store persists and retrieves activity reports. Implementations must be
// safe for concurrent use.
type Store interface {
	// Create persists a new report and returns its assigned id.
	Create(ctx context.Context, r *Report) (int64, error)
	// Recent returns up to 100 reports, newest-first.
	Recent(ctx context.Context) ([]Report, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a Store backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the reports database.
// It resolves to ~/.immiai/reports.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("reports: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".immiai")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("reports: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "reports.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("reports: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS reports (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    lat          REAL    NOT NULL,
    lon          REAL    NOT NULL,
    city         TEXT    NOT NULL,
    description  TEXT,
    verified     INTEGER NOT NULL DEFAULT 0,
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_reports_created
    ON reports (created_at DESC);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("reports: migrate: %w", err)
	}
	return nil
}

// Create persists a new report. The Date and Verified fields are set by the
// store: submissions are timestamped at insert and always start unverified.
func (s *SQLiteStore) Create(ctx context.Context, r *Report) (int64, error) {
	const q = `INSERT INTO reports (lat, lon, city, description, verified, created_at) VALUES (?, ?, ?, ?, 0, ?)`
	now := time.Now()
	res, err := s.db.ExecContext(ctx, q, r.Lat, r.Lon, r.City, r.Description, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("reports: create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reports: create id: %w", err)
	}
	r.ID = id
	r.Date = now
	r.Verified = false
	return id, nil
}

// Recent returns up to 100 reports, newest-first.
func (s *SQLiteStore) Recent(ctx context.Context) ([]Report, error) {
	const q = `
SELECT id, lat, lon, city, COALESCE(description, ''), verified, created_at
FROM   reports
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("reports: recent: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var r Report
		var ts int64
		if err := rows.Scan(&r.ID, &r.Lat, &r.Lon, &r.City, &r.Description, &r.Verified, &ts); err != nil {
			return nil, fmt.Errorf("reports: recent scan: %w", err)
		}
		r.Date = time.Unix(ts, 0)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: recent rows: %w", err)
	}
	return out, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("reports: close: %w", err)
	}
	return nil
}
