package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/gentrap"
	"github.com/google/uuid"
)

// RunRecord is one cached pipeline run.
type RunRecord struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	SummaryFile  string    `json:"summary_file" yaml:"summary_file"`
	Version      string    `json:"version" yaml:"version"`
	LibType      string    `json:"lib_type" yaml:"lib_type"`
	SampleCount  int       `json:"sample_count" yaml:"sample_count"`
	LibraryCount int       `json:"library_count" yaml:"library_count"`
	CachedAt     time.Time `json:"cached_at" yaml:"cached_at"`
}

// NodeMetrics are the cached RNA metrics of one sample or library. Library
// is empty for sample rows. Values holds only the metrics that were present.
type NodeMetrics struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Sample      string             `json:"sample" yaml:"sample"`
	Library     string             `json:"library,omitempty" yaml:"library,omitempty"`
	IsPairedEnd bool               `json:"is_paired_end" yaml:"is_paired_end"`
	Values      map[string]float64 `json:"values" yaml:"values"`
}

// ModuleStatus is the cached status of one FastQC module.
type ModuleStatus struct {
	Sample  string `json:"sample" yaml:"sample"`
	Library string `json:"library" yaml:"library"`
	Role    string `json:"role" yaml:"role"`
	Module  string `json:"module" yaml:"module"`
	Status  string `json:"status" yaml:"status"`
}

// SaveResult describes what SaveRun stored.
type SaveResult struct {
	RunID string `json:"run_id" yaml:"run_id"`

	// ChangedFiles lists the FastQC files that were new to the file index
	// or whose checksum differed from the indexed one.
	ChangedFiles []string `json:"changed_files" yaml:"changed_files"`
}

// SaveRun stores run under a new run id in one transaction and updates the
// file index with the checksums of its FastQC reports.
func (c *Cache) SaveRun(run *gentrap.Run) (*SaveResult, error) {
	files := reportChecksums(run)
	changed, err := c.GetChangedFiles(files)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	now := time.Now().Format(time.RFC3339)

	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, summary_file, version, lib_type, sample_count, library_count, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, run.SummaryFile, run.Version, string(run.LibType),
		len(run.SampleNames), len(run.Libs), now,
	)
	if err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	metricsStmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO metrics (run_id, sample, library, is_paired_end, %s)
		VALUES (?, ?, ?, ?%s)`,
		strings.Join(metricColumns, ", "),
		strings.Repeat(", ?", len(metricColumns)),
	))
	if err != nil {
		return nil, fmt.Errorf("prepare metrics statement: %w", err)
	}
	defer metricsStmt.Close()

	qcStmt, err := tx.Prepare(`
		INSERT INTO qc_modules (run_id, sample, library, role, module, status)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare qc statement: %w", err)
	}
	defer qcStmt.Close()

	saveMetrics := func(sample, library string, paired bool, m gentrap.RNAMetrics) error {
		args := []any{runID, sample, library, paired}
		for _, col := range metricColumns {
			if v, ok := m.Float(col); ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		_, err := metricsStmt.Exec(args...)
		return err
	}

	for _, s := range run.SamplesInOrder() {
		if err := saveMetrics(s.Name, "", s.IsPairedEnd, s.RNAMetrics); err != nil {
			return nil, fmt.Errorf("save metrics %s: %w", s.Name, err)
		}
	}

	for _, lib := range run.Libs {
		if err := saveMetrics(lib.Sample.Name, lib.Name, lib.IsPairedEnd, lib.RNAMetrics); err != nil {
			return nil, fmt.Errorf("save metrics %s: %w", lib, err)
		}
		for _, role := range gentrap.Roles() {
			r, ok := lib.Report(role)
			if !ok {
				continue
			}
			for _, kind := range fastqc.Kinds() {
				m, err := r.Module(kind)
				if err != nil {
					continue
				}
				_, err = qcStmt.Exec(runID, lib.Sample.Name, lib.Name, string(role), kind.Key(), m.Status.String())
				if err != nil {
					return nil, fmt.Errorf("save qc module %s %s %s: %w", lib, role, kind.Key(), err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	entries := make([]FileEntry, 0, len(files))
	for path, sum := range files {
		entries = append(entries, FileEntry{FilePath: path, Checksum: sum})
	}
	if err := c.SetBulkFilesIndexed(entries); err != nil {
		return nil, err
	}

	return &SaveResult{RunID: runID, ChangedFiles: changed}, nil
}

// reportChecksums maps the path of every FastQC report of run to its
// checksum. Reports parsed from readers have no path and are skipped.
func reportChecksums(run *gentrap.Run) map[string]string {
	files := make(map[string]string)
	for _, lib := range run.Libs {
		for _, r := range lib.Reports() {
			if r.Path != "" && r.Checksum != "" {
				files[r.Path] = r.Checksum
			}
		}
	}
	return files
}

const runColumns = `run_id, summary_file, version, lib_type, sample_count, library_count, cached_at`

func scanRun(row interface{ Scan(...any) error }) (*RunRecord, error) {
	var rec RunRecord
	var cachedAt string
	err := row.Scan(&rec.RunID, &rec.SummaryFile, &rec.Version, &rec.LibType,
		&rec.SampleCount, &rec.LibraryCount, &cachedAt)
	if err != nil {
		return nil, err
	}
	rec.CachedAt, _ = time.Parse(time.RFC3339, cachedAt)
	return &rec, nil
}

// GetRun retrieves a cached run by id.
// Returns sql.ErrNoRows if the run does not exist.
func (c *Cache) GetRun(runID string) (*RunRecord, error) {
	rec, err := scanRun(c.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}

// LatestRun retrieves the most recently cached run.
// Returns sql.ErrNoRows if the cache holds no runs.
func (c *Cache) LatestRun() (*RunRecord, error) {
	rec, err := scanRun(c.db.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY cached_at DESC, rowid DESC LIMIT 1`))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get latest run: %w", err)
	}
	return rec, nil
}

// ListRuns retrieves all cached runs, newest first.
func (c *Cache) ListRuns() ([]RunRecord, error) {
	rows, err := c.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY cached_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run with its metrics and module statuses.
func (c *Cache) DeleteRun(runID string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"qc_modules", "metrics", "runs"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("delete run %s from %s: %w", runID, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetMetrics retrieves the cached metrics of one node. An empty library
// selects the sample row.
// Returns sql.ErrNoRows if the node was not cached.
func (c *Cache) GetMetrics(runID, sample, library string) (*NodeMetrics, error) {
	row := c.db.QueryRow(`
		SELECT run_id, sample, library, is_paired_end, `+strings.Join(metricColumns, ", ")+`
		FROM metrics WHERE run_id = ? AND sample = ? AND library = ?`,
		runID, sample, library)
	m, err := scanMetrics(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get metrics %s/%s: %w", sample, library, err)
	}
	return m, nil
}

// GetRunMetrics retrieves the cached metrics of every node of a run,
// samples before libraries, each ordered by name.
func (c *Cache) GetRunMetrics(runID string) ([]NodeMetrics, error) {
	rows, err := c.db.Query(`
		SELECT run_id, sample, library, is_paired_end, `+strings.Join(metricColumns, ", ")+`
		FROM metrics WHERE run_id = ?
		ORDER BY library != '', sample, library`, runID)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []NodeMetrics
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func scanMetrics(row interface{ Scan(...any) error }) (*NodeMetrics, error) {
	var m NodeMetrics
	values := make([]sql.NullFloat64, len(metricColumns))
	dest := []any{&m.RunID, &m.Sample, &m.Library, &m.IsPairedEnd}
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	m.Values = make(map[string]float64)
	for i, v := range values {
		if v.Valid {
			m.Values[metricColumns[i]] = v.Float64
		}
	}
	return &m, nil
}

// ModuleStatuses retrieves the module statuses of a run, optionally
// restricted to one status. An empty status returns all of them.
func (c *Cache) ModuleStatuses(runID, status string) ([]ModuleStatus, error) {
	query := `SELECT sample, library, role, module, status FROM qc_modules WHERE run_id = ?`
	args := []any{runID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY sample, library, role, module`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query qc modules: %w", err)
	}
	defer rows.Close()

	var out []ModuleStatus
	for rows.Next() {
		var ms ModuleStatus
		if err := rows.Scan(&ms.Sample, &ms.Library, &ms.Role, &ms.Module, &ms.Status); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// FailingModules retrieves the failing modules of a run.
func (c *Cache) FailingModules(runID string) ([]ModuleStatus, error) {
	return c.ModuleStatuses(runID, fastqc.StatusFail.String())
}
