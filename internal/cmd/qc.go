package cmd

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/report"
	"github.com/spf13/cobra"
)

// qcCmd represents the qc command
var qcCmd = &cobra.Command{
	Use:   "qc <summary>",
	Short: "Show the FastQC status overview of a run",
	Long: `List the passing, warning and failing FastQC modules of every library in a
Gentrap run, together with totals across the run.

Use --failures to list only the failing modules, and --sample with --library
to show one library.`,
	Example: `  gentrap-report qc summary.json
  gentrap-report qc summary.json --failures --format json
  gentrap-report qc summary.json --sample sample_1 --library lib_1`,
	Args: cobra.ExactArgs(1),
	RunE: runQC,
}

var (
	qcFailures bool
	qcSample   string
	qcLibrary  string
)

func init() {
	rootCmd.AddCommand(qcCmd)
	qcCmd.Flags().BoolVar(&qcFailures, "failures", false, "List only failing modules")
	qcCmd.Flags().StringVar(&qcSample, "sample", "", "Show only this sample")
	qcCmd.Flags().StringVar(&qcLibrary, "library", "", "Show only this library of --sample")
}

func runQC(cmd *cobra.Command, args []string) error {
	if (qcSample == "") != (qcLibrary == "") {
		return fmt.Errorf("--sample and --library must be given together")
	}

	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	qc := report.NewQCReport(run)
	getLogger().Debug("built qc overview")

	switch {
	case qcSample != "":
		lib, ok := qc.Library(qcSample, qcLibrary)
		if !ok {
			return fmt.Errorf("library not found: %s/%s", qcSample, qcLibrary)
		}
		return printValue(cmd, lib)
	case qcFailures:
		failures := qc.Failures()
		if failures == nil {
			failures = []report.ModuleFailure{}
		}
		return printValue(cmd, map[string]interface{}{
			"report":   qc.Report,
			"count":    qc.FailureCount(),
			"failures": failures,
		})
	}
	return printValue(cmd, qc)
}
