package cache

// schemaSQL defines the SQLite schema for the cache database.
// Tables:
//   - runs: one row per cached pipeline run
//   - metrics: RNA metrics per sample (library = '') and per library
//   - qc_modules: status of every FastQC module of every library
//   - file_index: checksum of every FastQC file read, for change detection
const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    summary_file TEXT NOT NULL,
    version TEXT NOT NULL,
    lib_type TEXT NOT NULL,
    sample_count INTEGER NOT NULL DEFAULT 0,
    library_count INTEGER NOT NULL DEFAULT 0,
    cached_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metrics (
    run_id TEXT NOT NULL REFERENCES runs(run_id),
    sample TEXT NOT NULL,
    library TEXT NOT NULL DEFAULT '',
    is_paired_end INTEGER NOT NULL DEFAULT 0,
    pf_bases REAL,
    exonic_bases REAL,
    pct_exonic_bases_all REAL,
    pct_exonic_bases REAL,
    pct_aligned_bases_all REAL,
    pct_coding_bases_all REAL,
    pct_utr_bases_all REAL,
    pct_intronic_bases_all REAL,
    pct_intergenic_bases_all REAL,
    pct_ribosomal_bases_all REAL,
    PRIMARY KEY (run_id, sample, library)
);

CREATE TABLE IF NOT EXISTS qc_modules (
    run_id TEXT NOT NULL REFERENCES runs(run_id),
    sample TEXT NOT NULL,
    library TEXT NOT NULL,
    role TEXT NOT NULL,
    module TEXT NOT NULL,
    status TEXT NOT NULL,
    PRIMARY KEY (run_id, sample, library, role, module)
);

CREATE TABLE IF NOT EXISTS file_index (
    file_path TEXT PRIMARY KEY,
    checksum TEXT NOT NULL,
    indexed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_cached_at ON runs(cached_at DESC);
CREATE INDEX IF NOT EXISTS idx_qc_modules_status ON qc_modules(status);
CREATE INDEX IF NOT EXISTS idx_metrics_pct_exonic ON metrics(pct_exonic_bases DESC);
`

// metricColumns are the RNA metrics stored per node, in column order.
var metricColumns = []string{
	"pf_bases",
	"exonic_bases",
	"pct_exonic_bases_all",
	"pct_exonic_bases",
	"pct_aligned_bases_all",
	"pct_coding_bases_all",
	"pct_utr_bases_all",
	"pct_intronic_bases_all",
	"pct_intergenic_bases_all",
	"pct_ribosomal_bases_all",
}

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
