package cache

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// FileEntry holds the indexed checksum of a FastQC file.
type FileEntry struct {
	FilePath  string    `json:"file_path" yaml:"file_path"`
	Checksum  string    `json:"checksum" yaml:"checksum"`
	IndexedAt time.Time `json:"indexed_at" yaml:"indexed_at"`
}

// SetFileIndexed records the checksum of a file.
func (c *Cache) SetFileIndexed(path, checksum string) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO file_index (file_path, checksum, indexed_at)
		VALUES (?, ?, ?)`,
		path, checksum, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set file indexed %s: %w", path, err)
	}
	return nil
}

// GetFileChecksum retrieves the indexed checksum of a file.
// Returns sql.ErrNoRows if the file has not been indexed.
func (c *Cache) GetFileChecksum(path string) (string, error) {
	var checksum string
	err := c.db.QueryRow("SELECT checksum FROM file_index WHERE file_path = ?", path).Scan(&checksum)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("get file checksum %s: %w", path, err)
	}
	return checksum, nil
}

// GetFileEntry retrieves the full file entry including index time.
// Returns sql.ErrNoRows if the file has not been indexed.
func (c *Cache) GetFileEntry(path string) (*FileEntry, error) {
	var entry FileEntry
	var indexedAt string
	err := c.db.QueryRow(`
		SELECT file_path, checksum, indexed_at FROM file_index WHERE file_path = ?`,
		path).Scan(&entry.FilePath, &entry.Checksum, &indexedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get file entry %s: %w", path, err)
	}
	entry.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
	return &entry, nil
}

// IsFileChanged checks if a file's checksum differs from the indexed one.
// Returns true if the file has changed or has never been indexed.
func (c *Cache) IsFileChanged(path, checksum string) (bool, error) {
	old, err := c.GetFileChecksum(path)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return old != checksum, nil
}

// GetAllFileEntries retrieves all file entries from the index.
func (c *Cache) GetAllFileEntries() ([]FileEntry, error) {
	rows, err := c.db.Query(`
		SELECT file_path, checksum, indexed_at FROM file_index ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("query file entries: %w", err)
	}
	defer rows.Close()

	var entries []FileEntry
	for rows.Next() {
		var entry FileEntry
		var indexedAt string
		if err := rows.Scan(&entry.FilePath, &entry.Checksum, &indexedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// DeleteFileEntry removes a file from the index.
func (c *Cache) DeleteFileEntry(path string) error {
	_, err := c.db.Exec("DELETE FROM file_index WHERE file_path = ?", path)
	if err != nil {
		return fmt.Errorf("delete file entry %s: %w", path, err)
	}
	return nil
}

// SetBulkFilesIndexed records checksums for multiple files in one
// transaction.
func (c *Cache) SetBulkFilesIndexed(entries []FileEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO file_index (file_path, checksum, indexed_at)
		VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		indexedAt := entry.IndexedAt
		if indexedAt.IsZero() {
			indexedAt = time.Now()
		}
		_, err := stmt.Exec(entry.FilePath, entry.Checksum, indexedAt.Format(time.RFC3339))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save file entry %s: %w", entry.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetChangedFiles returns the paths, sorted, whose checksum in checksums
// differs from the index or that are not indexed yet.
func (c *Cache) GetChangedFiles(checksums map[string]string) ([]string, error) {
	var changed []string

	for path, sum := range checksums {
		isChanged, err := c.IsFileChanged(path, sum)
		if err != nil {
			return nil, err
		}
		if isChanged {
			changed = append(changed, path)
		}
	}

	sort.Strings(changed)
	return changed, nil
}

// PruneStaleEntries removes file entries for files no longer in the provided set.
func (c *Cache) PruneStaleEntries(validPaths map[string]bool) (int, error) {
	entries, err := c.GetAllFileEntries()
	if err != nil {
		return 0, err
	}

	var pruned int
	for _, entry := range entries {
		if !validPaths[entry.FilePath] {
			if err := c.DeleteFileEntry(entry.FilePath); err != nil {
				return pruned, err
			}
			pruned++
		}
	}

	return pruned, nil
}
