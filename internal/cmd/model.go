package cmd

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/output"
	"github.com/spf13/cobra"
)

// modelCmd represents the model command
var modelCmd = &cobra.Command{
	Use:   "model <summary>",
	Short: "Print the assembled run model",
	Long: `Assemble the run, sample and library tree from a Gentrap summary and print it.

Density Levels:
  sparse   names, pairing flags and FastQC status counts
  medium   adds RNA and alignment metrics and curated executables (default)
  dense    adds parsed FastQC modules, flexiprep data, settings and files

Use --sample to print one sample, and --sample with --library to print one
library.`,
	Example: `  gentrap-report model summary.json
  gentrap-report model summary.json --format json --density dense
  gentrap-report model summary.json --sample sample_1 --library lib_1`,
	Args: cobra.ExactArgs(1),
	RunE: runModel,
}

var (
	modelSample  string
	modelLibrary string
)

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.Flags().StringVar(&modelSample, "sample", "", "Print only this sample")
	modelCmd.Flags().StringVar(&modelLibrary, "library", "", "Print only this library of --sample")
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, density, err := resolveOutput(cfg)
	if err != nil {
		return err
	}
	if modelLibrary != "" && modelSample == "" {
		return fmt.Errorf("--library requires --sample")
	}

	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var v interface{} = run
	switch {
	case modelLibrary != "":
		lib, ok := run.Library(modelSample, modelLibrary)
		if !ok {
			return fmt.Errorf("library not found: %s/%s", modelSample, modelLibrary)
		}
		v = output.NewLibraryOutput(lib, density)
	case modelSample != "":
		s, ok := run.Sample(modelSample)
		if !ok {
			return fmt.Errorf("sample not found: %s", modelSample)
		}
		v = output.NewSampleOutput(s, density)
	}

	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(cmd.OutOrStdout(), v, density)
}
