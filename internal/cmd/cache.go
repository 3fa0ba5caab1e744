package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/biopet/gentrap-report/internal/cache"
	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Metrics cache commands",
	Long: `Commands for the SQLite metrics cache (cache.path, default .gentrap/cache.db).

Each saved run gets a new id. The cache keeps the RNA metrics of every sample
and library, the status of every FastQC module, and the checksum of every
FastQC file it has seen, so a rerun reports which files changed.`,
}

var cacheSaveCmd = &cobra.Command{
	Use:     "save <summary>",
	Short:   "Store a pipeline run in the cache",
	Example: `  gentrap-report cache save summary.json`,
	Args:    cobra.ExactArgs(1),
	RunE:    runCacheSave,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache statistics",
	RunE:  runCacheInfo,
}

var cacheRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List cached runs, newest first",
	RunE:  runCacheRuns,
}

var cacheMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the cached RNA metrics of a run",
	Long: `Show the cached RNA metrics of a run, sample rows first.

Defaults to the most recently cached run.`,
	RunE: runCacheMetrics,
}

var cacheFailsCmd = &cobra.Command{
	Use:   "fails",
	Short: "List failing FastQC modules of a run",
	Long: `List failing FastQC modules of a run.

Defaults to the most recently cached run. Use --status warn to list warnings
instead.`,
	Example: `  gentrap-report cache fails
  gentrap-report cache fails --run 3f0c... --status warn`,
	RunE: runCacheFails,
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one cached run",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheDelete,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all runs and the file index",
	Long: `Remove all runs and the file index.

Use --files to clear only the file index, so the next save reports every
FastQC file as changed.`,
	RunE: runCacheClear,
}

var cacheFilesCmd = &cobra.Command{
	Use:   "files [path...]",
	Short: "Show indexed FastQC files",
	Long: `Show the checksum and index time of FastQC files in the cache.

Without arguments every indexed file is listed. With --prune, entries whose
file no longer exists on disk are removed first.`,
	Example: `  gentrap-report cache files
  gentrap-report cache files sample_1/fastqc_data.txt
  gentrap-report cache files --prune`,
	RunE: runCacheFiles,
}

var cacheIndexCmd = &cobra.Command{
	Use:   "index <fastqc_data.txt>...",
	Short: "Record the checksum of FastQC files",
	Long: `Parse FastQC files, report whether each changed since it was last
indexed, and record its current checksum.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCacheIndex,
}

var (
	cacheRunID      string
	cacheStatus     string
	cacheFilesPrune bool
	cacheClearFiles bool
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheSaveCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheRunsCmd)
	cacheCmd.AddCommand(cacheMetricsCmd)
	cacheCmd.AddCommand(cacheFailsCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheFilesCmd)
	cacheCmd.AddCommand(cacheIndexCmd)

	cacheMetricsCmd.Flags().StringVar(&cacheRunID, "run", "", "Run id (default: latest run)")
	cacheFailsCmd.Flags().StringVar(&cacheRunID, "run", "", "Run id (default: latest run)")
	cacheFailsCmd.Flags().StringVar(&cacheStatus, "status", "fail", "Module status to list (pass|warn|fail)")
	cacheFilesCmd.Flags().BoolVar(&cacheFilesPrune, "prune", false, "Remove entries for files missing on disk")
	cacheClearCmd.Flags().BoolVar(&cacheClearFiles, "files", false, "Clear only the file index")
}

func openCache() (*cache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return c, nil
}

// printValue formats v with the configured output format.
func printValue(cmd *cobra.Command, v interface{}) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, density, err := resolveOutput(cfg)
	if err != nil {
		return err
	}
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), v, density)
}

func runCacheSave(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.SaveRun(run)
	if err != nil {
		return err
	}
	getLogger().Debug("cached run",
		zap.String("run_id", res.RunID),
		zap.Int("changed_files", len(res.ChangedFiles)),
	)
	return printValue(cmd, res)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	stats, err := c.GetStats()
	if err != nil {
		return err
	}

	info := map[string]interface{}{
		"path":          c.Path(),
		"runs":          stats.Runs,
		"metrics_rows":  stats.MetricsCount,
		"qc_modules":    stats.QCModuleCount,
		"failing":       stats.FailingCount,
		"indexed_files": stats.FileIndexCount,
	}
	if fi, err := os.Stat(c.Path()); err == nil {
		info["size_bytes"] = fi.Size()
	}
	return printValue(cmd, info)
}

func runCacheRuns(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	runs, err := c.ListRuns()
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []cache.RunRecord{}
	}
	return printValue(cmd, runs)
}

// selectRun returns cacheRunID, or the latest run id when it is empty.
func selectRun(c *cache.Cache) (string, error) {
	if cacheRunID != "" {
		return checkRun(c, cacheRunID)
	}
	rec, err := c.LatestRun()
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("cache %s holds no runs", c.Path())
	}
	if err != nil {
		return "", err
	}
	return rec.RunID, nil
}

func checkRun(c *cache.Cache, runID string) (string, error) {
	_, err := c.GetRun(runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return "", err
	}
	return runID, nil
}

func runCacheMetrics(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	runID, err := selectRun(c)
	if err != nil {
		return err
	}
	metrics, err := c.GetRunMetrics(runID)
	if err != nil {
		return err
	}
	return printValue(cmd, metrics)
}

func runCacheFails(cmd *cobra.Command, args []string) error {
	status, err := fastqc.ParseStatus(cacheStatus)
	if err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	runID, err := selectRun(c)
	if err != nil {
		return err
	}
	statuses, err := c.ModuleStatuses(runID, status.String())
	if err != nil {
		return err
	}
	if statuses == nil {
		statuses = []cache.ModuleStatus{}
	}
	return printValue(cmd, map[string]interface{}{
		"run_id":  runID,
		"status":  status,
		"modules": statuses,
	})
}

func runCacheDelete(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := checkRun(c, args[0]); err != nil {
		return err
	}
	if err := c.DeleteRun(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	if cacheClearFiles {
		if err := c.ClearFileIndex(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared file index of %s\n", c.Path())
		return nil
	}
	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", c.Path())
	return nil
}

func runCacheFiles(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	if cacheFilesPrune {
		pruned, err := pruneMissingFiles(c)
		if err != nil {
			return err
		}
		getLogger().Debug("pruned file index", zap.Int("pruned", pruned))
		fmt.Fprintf(cmd.ErrOrStderr(), "Pruned %d file entries\n", pruned)
	}

	if len(args) == 0 {
		entries, err := c.GetAllFileEntries()
		if err != nil {
			return err
		}
		if entries == nil {
			entries = []cache.FileEntry{}
		}
		return printValue(cmd, entries)
	}

	entries := make([]cache.FileEntry, 0, len(args))
	for _, path := range args {
		entry, err := c.GetFileEntry(path)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("file not indexed: %s", path)
		}
		if err != nil {
			return err
		}
		entries = append(entries, *entry)
	}
	return printValue(cmd, entries)
}

// pruneMissingFiles drops index entries whose file is gone from disk.
func pruneMissingFiles(c *cache.Cache) (int, error) {
	entries, err := c.GetAllFileEntries()
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if _, err := os.Stat(e.FilePath); err == nil {
			present[e.FilePath] = true
		}
	}
	return c.PruneStaleEntries(present)
}

// indexedFile is one line of cache index output.
type indexedFile struct {
	Path     string `json:"path" yaml:"path"`
	Checksum string `json:"checksum" yaml:"checksum"`
	Changed  bool   `json:"changed" yaml:"changed"`
}

func runCacheIndex(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	out := make([]indexedFile, 0, len(args))
	for _, path := range args {
		r, err := fastqc.ParseFile(path)
		if err != nil {
			return err
		}
		changed, err := c.IsFileChanged(path, r.Checksum)
		if err != nil {
			return err
		}
		if err := c.SetFileIndexed(path, r.Checksum); err != nil {
			return err
		}
		out = append(out, indexedFile{Path: path, Checksum: r.Checksum, Changed: changed})
	}
	return printValue(cmd, out)
}
