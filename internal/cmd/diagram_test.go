package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestDiagramCommand(t *testing.T) {
	summaryPath := setupCmdTest(t)
	t.Cleanup(func() { diagramType, diagramDirection, diagramTitle = "mermaid", "right", "" })

	tests := []struct {
		kind   string
		prefix string
	}{
		{"mermaid", "flowchart LR\n"},
		{"d2", "direction: right\n"},
		{"pie", "pie\n"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			diagramType, diagramDirection, diagramTitle = tt.kind, "right", ""

			var buf bytes.Buffer
			diagramCmd.SetOut(&buf)
			if err := runDiagram(diagramCmd, []string{summaryPath}); err != nil {
				t.Fatalf("runDiagram: %v", err)
			}
			if !strings.HasPrefix(buf.String(), tt.prefix) {
				t.Errorf("output should start with %q:\n%s", tt.prefix, buf.String())
			}
		})
	}

	diagramType = "svg"
	if err := runDiagram(diagramCmd, []string{summaryPath}); err == nil {
		t.Error("expected error for unknown diagram type")
	}
}
