package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/biopet/gentrap-report/internal/render"
	"github.com/biopet/gentrap-report/internal/report"
	"github.com/spf13/cobra"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <summary> [template] [logo]",
	Short: "Render a report template for a pipeline run",
	Long: `Render a template against the run assembled from a Gentrap summary.

Templates use delimiters that do not collide with LaTeX:
  ((* ... *))   blocks (if, range, define, template)
  ((( ... )))   variables
  ((= ... =))   comments

Whitespace before a block or comment tag on its own line is removed, as is
the newline after it. Templates in the same directory with the same
extension can be included by file name:
  ((* template "sample.tex" . *))

Filters:
  nice_int        integer with locale grouping
  nice_flt        float with two decimals and locale grouping
  float2nice_pct  fraction as a percentage with two decimals
  basename        last element of a path

Absent numbers print as render.default_value ("None" by default). Number
grouping follows render.locale.

Template and logo fall back to render.template and render.logo from the
config file when omitted.

Use --dump document|qc to print the value a template receives, in the
configured output format, instead of rendering.`,
	Example: `  gentrap-report render summary.json report.tex logo.pdf
  gentrap-report render summary.json report.tex logo.pdf -o report_out.tex
  gentrap-report render summary.json --dump document --format json`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runRender,
}

var (
	renderOutput string
	renderDump   string
)

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write the rendered report to this file instead of stdout")
	renderCmd.Flags().StringVar(&renderDump, "dump", "", "Print the report value (document|qc) instead of rendering")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	templatePath := cfg.Render.Template
	if len(args) > 1 {
		templatePath = args[1]
	}
	logo := cfg.Render.Logo
	if len(args) > 2 {
		logo = args[2]
	}

	if renderDump != "" {
		rt, err := report.ParseReportType(renderDump)
		if err != nil {
			return err
		}
		run, err := loadRun(args[0])
		if err != nil {
			return err
		}
		if rt == report.ReportTypeQC {
			return printValue(cmd, report.NewQCReport(run))
		}
		return printValue(cmd, report.NewDocument(run, logo, templatePath))
	}

	if templatePath == "" {
		return fmt.Errorf("no template given and render.template is not set")
	}
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	r := render.New(render.Options{
		Locale:       cfg.Tag(),
		DefaultValue: cfg.Render.DefaultValue,
		Logger:       getLogger(),
	})
	doc := report.NewDocument(run, logo, templatePath)

	if renderOutput == "" {
		return r.Render(cmd.OutOrStdout(), templatePath, doc)
	}
	return renderToFile(r, renderOutput, templatePath, doc)
}

// renderToFile writes the report to path. The file is removed again when
// rendering fails so no partial report is left behind.
func renderToFile(r *render.Renderer, path, templatePath string, doc *report.Document) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	if err := r.Render(w, templatePath, doc); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}
