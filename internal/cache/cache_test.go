package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/biopet/gentrap-report/internal/gentrap"
	"github.com/biopet/gentrap-report/internal/gentrap/gentraptest"
	"github.com/google/uuid"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	return cache
}

// loadRun writes the fixture summary into dir and assembles it.
func loadRun(t *testing.T, dir string) *gentrap.Run {
	t.Helper()
	run, err := gentrap.Load(gentraptest.WriteSummary(t, dir), gentrap.Options{})
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	return run
}

func TestCacheOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "cache.db")

	// Open cache
	cache, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	// Verify path
	if cache.Path() != dbPath {
		t.Errorf("path = %q, want %q", cache.Path(), dbPath)
	}

	// Verify DB is accessible
	if cache.DB() == nil {
		t.Error("DB() returned nil")
	}

	// Close
	if err := cache.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	// Reopen should work
	cache2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer cache2.Close()
}

func TestSaveRun(t *testing.T) {
	cache := setupTestCache(t)
	dir := t.TempDir()
	run := loadRun(t, dir)

	res, err := cache.SaveRun(run)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", res.RunID, err)
	}

	fastqcPath := filepath.Join(dir, "fastqc_data.txt")
	if len(res.ChangedFiles) != 1 || res.ChangedFiles[0] != fastqcPath {
		t.Errorf("changed files = %v, want [%s]", res.ChangedFiles, fastqcPath)
	}

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	want := Stats{
		Runs:           1,
		MetricsCount:   4,  // 2 samples + 2 libraries
		QCModuleCount:  66, // 6 reports x 11 modules
		FailingCount:   12,
		FileIndexCount: 1, // every role points at the same file
	}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	rec, err := cache.GetRun(res.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if rec.SummaryFile != run.SummaryFile {
		t.Errorf("summary file = %q, want %q", rec.SummaryFile, run.SummaryFile)
	}
	if rec.Version != gentraptest.Version {
		t.Errorf("version = %q, want %q", rec.Version, gentraptest.Version)
	}
	if rec.LibType != string(gentrap.LibTypeMixed) {
		t.Errorf("lib type = %q", rec.LibType)
	}
	if rec.SampleCount != 2 || rec.LibraryCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", rec.SampleCount, rec.LibraryCount)
	}
	if time.Since(rec.CachedAt) > time.Minute {
		t.Errorf("cached at = %v", rec.CachedAt)
	}

	latest, err := cache.LatestRun()
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if latest.RunID != res.RunID {
		t.Errorf("latest run = %s, want %s", latest.RunID, res.RunID)
	}
}

func TestSaveRunTwice(t *testing.T) {
	cache := setupTestCache(t)
	run := loadRun(t, t.TempDir())

	first, err := cache.SaveRun(run)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	second, err := cache.SaveRun(run)
	if err != nil {
		t.Fatalf("save run again: %v", err)
	}

	if first.RunID == second.RunID {
		t.Error("both saves got the same run id")
	}
	if len(second.ChangedFiles) != 0 {
		t.Errorf("unchanged files reported as changed: %v", second.ChangedFiles)
	}

	runs, err := cache.ListRuns()
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != second.RunID {
		t.Errorf("runs[0] = %s, want newest %s", runs[0].RunID, second.RunID)
	}
}

func TestSaveRunDetectsChangedFile(t *testing.T) {
	cache := setupTestCache(t)
	dir := t.TempDir()

	if _, err := cache.SaveRun(loadRun(t, dir)); err != nil {
		t.Fatalf("save run: %v", err)
	}

	// Lines outside modules are ignored by the parser but change the checksum.
	fastqcPath := filepath.Join(dir, "fastqc_data.txt")
	data := append([]byte("#rerun\n"), gentraptest.FastQCData...)
	if err := os.WriteFile(fastqcPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	run, err := gentrap.Load(filepath.Join(dir, "gentrap.summary.json"), gentrap.Options{})
	if err != nil {
		t.Fatalf("reload run: %v", err)
	}

	res, err := cache.SaveRun(run)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	if len(res.ChangedFiles) != 1 || res.ChangedFiles[0] != fastqcPath {
		t.Errorf("changed files = %v, want [%s]", res.ChangedFiles, fastqcPath)
	}
}

func TestGetMetrics(t *testing.T) {
	cache := setupTestCache(t)
	res, err := cache.SaveRun(loadRun(t, t.TempDir()))
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	t.Run("sample row", func(t *testing.T) {
		m, err := cache.GetMetrics(res.RunID, gentraptest.Sample1, "")
		if err != nil {
			t.Fatalf("get metrics: %v", err)
		}
		if !m.IsPairedEnd {
			t.Error("sample_1 should be paired end")
		}
		checks := map[string]float64{
			"pf_bases":                1000000,
			"exonic_bases":            500000,
			"pct_exonic_bases_all":    0.5,
			"pct_exonic_bases":        0.625,
			"pct_aligned_bases_all":   0.8,
			"pct_ribosomal_bases_all": 0.001,
		}
		for key, want := range checks {
			if got, ok := m.Values[key]; !ok || got != want {
				t.Errorf("%s = %v (present %v), want %v", key, got, ok, want)
			}
		}
		if len(m.Values) != len(metricColumns) {
			t.Errorf("expected %d values, got %d", len(metricColumns), len(m.Values))
		}
	})

	t.Run("library row", func(t *testing.T) {
		m, err := cache.GetMetrics(res.RunID, gentraptest.Sample2, gentraptest.Library)
		if err != nil {
			t.Fatalf("get metrics: %v", err)
		}
		if m.IsPairedEnd {
			t.Error("sample_2 library should be single end")
		}
		if m.Library != gentraptest.Library {
			t.Errorf("library = %q", m.Library)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := cache.GetMetrics(res.RunID, "nonexistent", "")
		if err != sql.ErrNoRows {
			t.Errorf("expected sql.ErrNoRows, got %v", err)
		}
	})
}

func TestMetricsOmittedRatio(t *testing.T) {
	cache := setupTestCache(t)
	dir := t.TempDir()

	doc := gentraptest.Document(gentraptest.WriteFastQC(t, dir))
	sample := doc["samples"].(map[string]any)[gentraptest.Sample1].(map[string]any)
	stats := sample["gentrap"].(map[string]any)["stats"].(map[string]any)
	rna := gentraptest.RNAStats()
	delete(rna, "pf_aligned_bases")
	stats["rna_metrics"] = rna

	run, err := gentrap.Load(gentraptest.WriteDocument(t, dir, doc), gentrap.Options{})
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	res, err := cache.SaveRun(run)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	m, err := cache.GetMetrics(res.RunID, gentraptest.Sample1, "")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	if _, ok := m.Values["pct_exonic_bases"]; ok {
		t.Error("pct_exonic_bases should be absent without pf_aligned_bases")
	}
	if got := m.Values["pct_aligned_bases_all"]; got != 0 {
		t.Errorf("pct_aligned_bases_all = %v, want 0", got)
	}
}

func TestGetRunMetrics(t *testing.T) {
	cache := setupTestCache(t)
	res, err := cache.SaveRun(loadRun(t, t.TempDir()))
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	all, err := cache.GetRunMetrics(res.RunID)
	if err != nil {
		t.Fatalf("get run metrics: %v", err)
	}

	want := [][2]string{
		{gentraptest.Sample1, ""},
		{gentraptest.Sample2, ""},
		{gentraptest.Sample1, gentraptest.Library},
		{gentraptest.Sample2, gentraptest.Library},
	}
	if len(all) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Sample != w[0] || all[i].Library != w[1] {
			t.Errorf("row %d = %s/%s, want %s/%s", i, all[i].Sample, all[i].Library, w[0], w[1])
		}
	}
}

func TestModuleStatuses(t *testing.T) {
	cache := setupTestCache(t)
	res, err := cache.SaveRun(loadRun(t, t.TempDir()))
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	all, err := cache.ModuleStatuses(res.RunID, "")
	if err != nil {
		t.Fatalf("module statuses: %v", err)
	}
	if len(all) != 66 {
		t.Errorf("expected 66 module statuses, got %d", len(all))
	}

	warns, err := cache.ModuleStatuses(res.RunID, "warn")
	if err != nil {
		t.Fatalf("module statuses: %v", err)
	}
	if len(warns) != 12 {
		t.Errorf("expected 12 warnings, got %d", len(warns))
	}

	fails, err := cache.FailingModules(res.RunID)
	if err != nil {
		t.Fatalf("failing modules: %v", err)
	}
	if len(fails) != 12 {
		t.Fatalf("expected 12 failures, got %d", len(fails))
	}
	first := ModuleStatus{
		Sample:  gentraptest.Sample1,
		Library: gentraptest.Library,
		Role:    "fastqc_R1",
		Module:  "kmer_content",
		Status:  "fail",
	}
	if fails[0] != first {
		t.Errorf("fails[0] = %+v, want %+v", fails[0], first)
	}
	for _, f := range fails {
		if f.Status != "fail" {
			t.Errorf("non-failing module in failures: %+v", f)
		}
	}

	none, err := cache.FailingModules("nonexistent")
	if err != nil {
		t.Fatalf("failing modules: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no failures for unknown run, got %d", len(none))
	}
}

func TestRunNotFound(t *testing.T) {
	cache := setupTestCache(t)

	if _, err := cache.GetRun("nonexistent"); err != sql.ErrNoRows {
		t.Errorf("GetRun: expected sql.ErrNoRows, got %v", err)
	}
	if _, err := cache.LatestRun(); err != sql.ErrNoRows {
		t.Errorf("LatestRun: expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteRun(t *testing.T) {
	cache := setupTestCache(t)
	run := loadRun(t, t.TempDir())

	keep, err := cache.SaveRun(run)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	drop, err := cache.SaveRun(run)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	if err := cache.DeleteRun(drop.RunID); err != nil {
		t.Fatalf("delete run: %v", err)
	}

	if _, err := cache.GetRun(drop.RunID); err != sql.ErrNoRows {
		t.Errorf("deleted run still present: %v", err)
	}
	if _, err := cache.GetRun(keep.RunID); err != nil {
		t.Errorf("kept run missing: %v", err)
	}

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Runs != 1 || stats.MetricsCount != 4 || stats.QCModuleCount != 66 {
		t.Errorf("stats after delete = %+v", *stats)
	}
}

func TestCacheClear(t *testing.T) {
	cache := setupTestCache(t)
	if _, err := cache.SaveRun(loadRun(t, t.TempDir())); err != nil {
		t.Fatalf("save run: %v", err)
	}

	// Clear
	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	// Verify cleared
	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("get stats after clear: %v", err)
	}
	if *stats != (Stats{}) {
		t.Errorf("expected empty cache, got %+v", *stats)
	}
}

func TestFileIndex(t *testing.T) {
	cache := setupTestCache(t)

	path := "/data/s1/fastqc_data.txt"
	checksum := "abc123def456"

	if err := cache.SetFileIndexed(path, checksum); err != nil {
		t.Fatalf("set file indexed: %v", err)
	}

	got, err := cache.GetFileChecksum(path)
	if err != nil {
		t.Fatalf("get file checksum: %v", err)
	}
	if got != checksum {
		t.Errorf("checksum = %q, want %q", got, checksum)
	}

	entry, err := cache.GetFileEntry(path)
	if err != nil {
		t.Fatalf("get file entry: %v", err)
	}
	if entry.FilePath != path || entry.Checksum != checksum {
		t.Errorf("entry = %+v", entry)
	}
	if entry.IndexedAt.IsZero() {
		t.Error("IndexedAt should not be zero")
	}
}

func TestFileIndexNotFound(t *testing.T) {
	cache := setupTestCache(t)

	_, err := cache.GetFileChecksum("nonexistent.txt")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	_, err = cache.GetFileEntry("nonexistent.txt")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestIsFileChanged(t *testing.T) {
	cache := setupTestCache(t)

	path := "fastqc_data.txt"

	// New file should be changed
	changed, err := cache.IsFileChanged(path, "hash1")
	if err != nil {
		t.Fatalf("is file changed: %v", err)
	}
	if !changed {
		t.Error("new file should be reported as changed")
	}

	cache.SetFileIndexed(path, "hash1")

	// Same hash should not be changed
	changed, err = cache.IsFileChanged(path, "hash1")
	if err != nil {
		t.Fatalf("is file changed: %v", err)
	}
	if changed {
		t.Error("same hash should not be reported as changed")
	}

	// Different hash should be changed
	changed, err = cache.IsFileChanged(path, "hash2")
	if err != nil {
		t.Fatalf("is file changed: %v", err)
	}
	if !changed {
		t.Error("different hash should be reported as changed")
	}
}

func TestFileIndexBulkSave(t *testing.T) {
	cache := setupTestCache(t)

	entries := []FileEntry{
		{FilePath: "a.txt", Checksum: "hash1"},
		{FilePath: "b.txt", Checksum: "hash2"},
		{FilePath: "c.txt", Checksum: "hash3"},
	}

	if err := cache.SetBulkFilesIndexed(entries); err != nil {
		t.Fatalf("bulk save: %v", err)
	}

	all, err := cache.GetAllFileEntries()
	if err != nil {
		t.Fatalf("get all entries: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].FilePath != "a.txt" || all[2].FilePath != "c.txt" {
		t.Errorf("entries not ordered by path: %v", all)
	}

	if err := cache.SetBulkFilesIndexed(nil); err != nil {
		t.Errorf("empty bulk save: %v", err)
	}
}

func TestGetChangedFiles(t *testing.T) {
	cache := setupTestCache(t)

	cache.SetFileIndexed("unchanged.txt", "hash1")
	cache.SetFileIndexed("modified.txt", "hash2")

	changed, err := cache.GetChangedFiles(map[string]string{
		"unchanged.txt": "hash1",
		"modified.txt":  "newhash",
		"new.txt":       "hash3",
	})
	if err != nil {
		t.Fatalf("get changed files: %v", err)
	}

	want := []string{"modified.txt", "new.txt"}
	if len(changed) != len(want) {
		t.Fatalf("changed = %v, want %v", changed, want)
	}
	for i := range want {
		if changed[i] != want[i] {
			t.Errorf("changed[%d] = %q, want %q", i, changed[i], want[i])
		}
	}
}

func TestPruneStaleEntries(t *testing.T) {
	cache := setupTestCache(t)

	cache.SetFileIndexed("keep1.txt", "hash1")
	cache.SetFileIndexed("keep2.txt", "hash2")
	cache.SetFileIndexed("delete1.txt", "hash3")
	cache.SetFileIndexed("delete2.txt", "hash4")

	pruned, err := cache.PruneStaleEntries(map[string]bool{
		"keep1.txt": true,
		"keep2.txt": true,
	})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("pruned = %d, want 2", pruned)
	}

	all, _ := cache.GetAllFileEntries()
	if len(all) != 2 {
		t.Errorf("expected 2 remaining entries, got %d", len(all))
	}
}

func TestClearFileIndex(t *testing.T) {
	cache := setupTestCache(t)
	cache.SetFileIndexed("a.txt", "hash1")

	if err := cache.ClearFileIndex(); err != nil {
		t.Fatalf("clear file index: %v", err)
	}

	stats, _ := cache.GetStats()
	if stats.FileIndexCount != 0 {
		t.Errorf("file index count = %d, want 0", stats.FileIndexCount)
	}
}
