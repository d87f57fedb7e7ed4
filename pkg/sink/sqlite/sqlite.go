// pkg/sink/sqlite/sqlite.go
// Package sqlite persists observation records in an append-only SQLite log.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/softwatch/softwatch/pkg/sink"
	"github.com/softwatch/softwatch/pkg/software"
)

// Sink writes one row per accepted observation. Rows are never updated or
// deleted; the registry's in-memory table is the only mutable state.
type Sink struct {
	db *sql.DB
}

var _ sink.Sink = (*Sink)(nil)

// New opens (or creates) the SQLite database at the provided path and
// ensures the schema exists.
func New(path string) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	if err := ensureDir(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Sink{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func initSchema(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS software_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	observed_at INTEGER NOT NULL,
	host TEXT NOT NULL,
	software_category TEXT NOT NULL,
	name TEXT NOT NULL,
	version_major INTEGER NOT NULL,
	version_minor INTEGER NOT NULL,
	version_minor2 INTEGER NOT NULL,
	version_addl TEXT NOT NULL,
	raw_unparsed_version TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_software_log_host_name ON software_log (host, name);
`
	_, err := db.Exec(ddl)
	return err
}

// WriteObservation appends one record. It never rewrites prior rows.
func (s *Sink) WriteObservation(ctx context.Context, obs software.Observation) error {
	const query = `
INSERT INTO software_log (
	observed_at, host, software_category, name,
	version_major, version_minor, version_minor2, version_addl,
	raw_unparsed_version
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, query,
		obs.Timestamp.UTC().Unix(),
		software.HostString(obs.Host),
		string(obs.Category),
		obs.Name,
		obs.Version.Major,
		obs.Version.Minor,
		obs.Version.Minor2,
		obs.Version.Addl,
		obs.Unparsed,
	)
	if err != nil {
		return fmt.Errorf("error during insert exec: %w", err)
	}
	return nil
}

// Close releases the underlying database resources.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Recent retrieves the most recent records for testing or inspection
// purposes, newest first.
func (s *Sink) Recent(ctx context.Context, limit int) ([]software.Observation, error) {
	const query = `
SELECT observed_at, host, software_category, name,
	version_major, version_minor, version_minor2, version_addl,
	raw_unparsed_version
FROM software_log
ORDER BY id DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying log: %w", err)
	}
	defer rows.Close()

	var out []software.Observation
	for rows.Next() {
		var (
			obs      software.Observation
			observed int64
			host     string
			category string
		)
		if err := rows.Scan(
			&observed, &host, &category, &obs.Name,
			&obs.Version.Major, &obs.Version.Minor, &obs.Version.Minor2, &obs.Version.Addl,
			&obs.Unparsed,
		); err != nil {
			return nil, fmt.Errorf("error scanning log row: %w", err)
		}
		obs.Timestamp = time.Unix(observed, 0).UTC()
		obs.Category = software.Category(category)
		if host != "" {
			if addr, err := netip.ParseAddr(host); err == nil {
				obs.Host = addr
			}
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}
