// Package storage keeps a local catalog of fetched crate documentation
// in DuckDB. The catalog is bookkeeping, not a cache: it answers "which
// crates and versions has this server seen" without decompressing any
// cached document.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Catalog is the DuckDB-backed crate catalog.
type Catalog struct {
	conn *sql.DB
}

// CrateRecord is one cataloged crate version.
type CrateRecord struct {
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	FormatVersion int       `json:"format_version"`
	ItemCount     int       `json:"item_count"`
	FetchedAt     time.Time `json:"fetched_at"`
	LastUsedAt    time.Time `json:"last_used_at"`
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	cat := &Catalog{conn: conn}
	if err := cat.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return cat, nil
}

func (c *Catalog) Close() error {
	return c.conn.Close()
}

func (c *Catalog) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS crates (
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			format_version INTEGER NOT NULL,
			item_count INTEGER NOT NULL,
			fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_used_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crates_name ON crates (name)`,
	}

	for _, q := range queries {
		if _, err := c.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// Record upserts a crate version into the catalog, refreshing its
// last-used timestamp.
func (c *Catalog) Record(name, version string, formatVersion, itemCount int) error {
	res, err := c.conn.Exec(
		`UPDATE crates SET format_version = ?, item_count = ?, last_used_at = CURRENT_TIMESTAMP
		 WHERE name = ? AND version = ?`,
		formatVersion, itemCount, name, version)
	if err != nil {
		return fmt.Errorf("updating catalog entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	if _, err := c.conn.Exec(
		`INSERT INTO crates (name, version, format_version, item_count) VALUES (?, ?, ?, ?)`,
		name, version, formatVersion, itemCount); err != nil {
		return fmt.Errorf("inserting catalog entry: %w", err)
	}
	return nil
}

// Touch refreshes the last-used timestamp of a cataloged version.
func (c *Catalog) Touch(name, version string) error {
	if _, err := c.conn.Exec(
		`UPDATE crates SET last_used_at = CURRENT_TIMESTAMP WHERE name = ? AND version = ?`,
		name, version); err != nil {
		return fmt.Errorf("touching catalog entry: %w", err)
	}
	return nil
}

// List returns cataloged crates, most recently used first. An empty
// name lists everything; otherwise only versions of that crate.
func (c *Catalog) List(name string) ([]CrateRecord, error) {
	query := `SELECT name, version, format_version, item_count, fetched_at, last_used_at
	          FROM crates ORDER BY last_used_at DESC`
	args := []any{}
	if name != "" {
		query = `SELECT name, version, format_version, item_count, fetched_at, last_used_at
		         FROM crates WHERE name = ? ORDER BY last_used_at DESC`
		args = append(args, name)
	}

	rows, err := c.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()

	var out []CrateRecord
	for rows.Next() {
		var r CrateRecord
		if err := rows.Scan(&r.Name, &r.Version, &r.FormatVersion, &r.ItemCount, &r.FetchedAt, &r.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats summarizes the catalog.
type Stats struct {
	Crates     int `json:"crates"`
	Versions   int `json:"versions"`
	TotalItems int `json:"total_items"`
}

// Stats counts distinct crates, versions, and indexed items.
func (c *Catalog) Stats() (Stats, error) {
	var st Stats
	row := c.conn.QueryRow(
		`SELECT COUNT(DISTINCT name), COUNT(*), COALESCE(SUM(item_count), 0) FROM crates`)
	if err := row.Scan(&st.Crates, &st.Versions, &st.TotalItems); err != nil {
		return st, fmt.Errorf("reading catalog stats: %w", err)
	}
	return st, nil
}

// Clear removes every catalog entry.
func (c *Catalog) Clear() error {
	if _, err := c.conn.Exec(`DELETE FROM crates`); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}
	return nil
}
