// Package cache provides SQLite-backed storage of assembled pipeline runs.
// The cache is stored in .gentrap/cache.db by default and keeps the RNA
// metrics of every sample and library, the FastQC module statuses, and the
// checksum of every FastQC file that was read.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache manages the cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database at dbPath, creating its
// directory when needed. It initializes the schema if the database is new.
func Open(dbPath string) (*Cache, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	// Initialize schema
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes all cached runs and the file index.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM qc_modules; DELETE FROM metrics; DELETE FROM runs; DELETE FROM file_index;")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// ClearFileIndex removes all file index data.
func (c *Cache) ClearFileIndex() error {
	_, err := c.db.Exec("DELETE FROM file_index")
	if err != nil {
		return fmt.Errorf("clear file index: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// DB returns the underlying database connection for advanced operations.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// Stats holds row counts of the cache tables.
type Stats struct {
	Runs           int64 `json:"runs" yaml:"runs"`
	MetricsCount   int64 `json:"metrics" yaml:"metrics"`
	QCModuleCount  int64 `json:"qc_modules" yaml:"qc_modules"`
	FailingCount   int64 `json:"failing_modules" yaml:"failing_modules"`
	FileIndexCount int64 `json:"file_index" yaml:"file_index"`
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	counts := []struct {
		query string
		dest  *int64
		what  string
	}{
		{"SELECT COUNT(*) FROM runs", &stats.Runs, "runs"},
		{"SELECT COUNT(*) FROM metrics", &stats.MetricsCount, "metrics"},
		{"SELECT COUNT(*) FROM qc_modules", &stats.QCModuleCount, "qc modules"},
		{"SELECT COUNT(*) FROM qc_modules WHERE status = 'fail'", &stats.FailingCount, "failing modules"},
		{"SELECT COUNT(*) FROM file_index", &stats.FileIndexCount, "file index"},
	}
	for _, q := range counts {
		if err := c.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("count %s: %w", q.what, err)
		}
	}

	return &stats, nil
}
