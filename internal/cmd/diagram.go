package cmd

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/graph"
	"github.com/spf13/cobra"
)

// diagramCmd represents the diagram command
var diagramCmd = &cobra.Command{
	Use:   "diagram <summary>",
	Short: "Draw the run hierarchy as a diagram",
	Long: `Draw the run -> sample -> library -> FastQC report hierarchy of a pipeline
run. Every node is coloured by the worst FastQC status found below it.

Diagram Types:
  mermaid  Mermaid flowchart (default)
  d2       D2 diagram
  pie      Mermaid pie chart of module statuses across all reports`,
	Example: `  gentrap-report diagram summary.json
  gentrap-report diagram summary.json --type d2 --direction down
  gentrap-report diagram summary.json --type pie`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagram,
}

var (
	diagramType      string
	diagramDirection string
	diagramTitle     string
)

func init() {
	rootCmd.AddCommand(diagramCmd)
	diagramCmd.Flags().StringVar(&diagramType, "type", "mermaid", "Diagram type (mermaid|d2|pie)")
	diagramCmd.Flags().StringVar(&diagramDirection, "direction", "right", "Layout direction (right|down)")
	diagramCmd.Flags().StringVar(&diagramTitle, "title", "", "Diagram title")
}

func runDiagram(cmd *cobra.Command, args []string) error {
	switch diagramType {
	case "mermaid", "d2", "pie":
	default:
		return fmt.Errorf("unknown diagram type %q (valid: mermaid, d2, pie)", diagramType)
	}

	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	opts := &graph.Options{Direction: diagramDirection, Title: diagramTitle}
	var out string
	switch diagramType {
	case "mermaid":
		out = graph.Mermaid(graph.FromRun(run), opts)
	case "d2":
		out = graph.D2(graph.FromRun(run), opts)
	case "pie":
		out = graph.GeneratePieChart(graph.StatusCounts(run), diagramTitle)
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
