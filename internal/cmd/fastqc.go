package cmd

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// fastqcCmd represents the fastqc command
var fastqcCmd = &cobra.Command{
	Use:   "fastqc <fastqc_data.txt>",
	Short: "Inspect a single FastQC data file",
	Long: `Parse a FastQC data file and print its version, checksum and the module
names grouped by status.

At dense density the parsed body of every recognized module is included.
Use --raw to print one module exactly as it appears in the file, keyed by
its attribute name (basic_statistics, kmer_content, ...).`,
	Example: `  gentrap-report fastqc sample_1/fastqc_data.txt
  gentrap-report fastqc sample_1/fastqc_data.txt --density dense --format json
  gentrap-report fastqc sample_1/fastqc_data.txt --raw per_base_sequence_content`,
	Args: cobra.ExactArgs(1),
	RunE: runFastQC,
}

var fastqcRaw string

func init() {
	rootCmd.AddCommand(fastqcCmd)
	fastqcCmd.Flags().StringVar(&fastqcRaw, "raw", "", "Print the raw text of this module")
}

// fastqcSummary is the printed shape of a FastQC report.
type fastqcSummary struct {
	Path     string                    `yaml:"path" json:"path"`
	Version  string                    `yaml:"version" json:"version"`
	Checksum string                    `yaml:"checksum" json:"checksum"`
	Counts   map[string]int            `yaml:"counts" json:"counts"`
	Passes   []string                  `yaml:"passes" json:"passes"`
	Warns    []string                  `yaml:"warns" json:"warns"`
	Fails    []string                  `yaml:"fails" json:"fails"`
	Modules  map[string]*fastqc.Module `yaml:"modules,omitempty" json:"modules,omitempty"`
}

func runFastQC(cmd *cobra.Command, args []string) error {
	r, err := fastqc.ParseFile(args[0])
	if err != nil {
		return err
	}
	getLogger().Debug("parsed fastqc report", zap.String("path", r.Path), zap.Int("modules", r.Len()))

	if fastqcRaw != "" {
		m, err := r.Get(fastqcRaw)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), m.String())
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, density, err := resolveOutput(cfg)
	if err != nil {
		return err
	}

	summary := fastqcSummary{
		Path:     r.Path,
		Version:  r.Version,
		Checksum: r.Checksum,
		Counts:   make(map[string]int, len(fastqc.Statuses)),
		Passes:   r.Passes(),
		Warns:    r.Warns(),
		Fails:    r.Fails(),
	}
	for status, n := range r.StatusCounts() {
		summary.Counts[status.String()] = n
	}
	if density.IncludesModules() {
		summary.Modules = r.Modules()
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), summary, density)
}
