package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/biopet/gentrap-report/internal/gentrap/gentraptest"
	"github.com/biopet/gentrap-report/internal/output"
)

func TestModelCommand(t *testing.T) {
	summaryPath := setupCmdTest(t)

	t.Run("yaml output", func(t *testing.T) {
		var buf bytes.Buffer
		modelCmd.SetOut(&buf)
		if err := runModel(modelCmd, []string{summaryPath}); err != nil {
			t.Fatalf("runModel: %v", err)
		}

		result := buf.String()
		if !strings.Contains(result, "lib_type: mixed (single end and paired end)") {
			t.Errorf("expected lib_type in YAML output:\n%s", result)
		}
		if !strings.Contains(result, "name: sample_1") {
			t.Error("expected sample_1 in YAML output")
		}
		if !strings.Contains(result, "executables:") {
			t.Error("medium density should list executables")
		}
	})

	t.Run("json sparse output", func(t *testing.T) {
		outputFormat = "json"
		outputDensity = "sparse"
		defer func() { outputFormat, outputDensity = "", "" }()

		var buf bytes.Buffer
		modelCmd.SetOut(&buf)
		if err := runModel(modelCmd, []string{summaryPath}); err != nil {
			t.Fatalf("runModel: %v", err)
		}

		var out output.RunOutput
		if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(out.Samples) != 2 {
			t.Fatalf("expected 2 samples, got %d", len(out.Samples))
		}
		if out.Samples[0].RNAMetrics != nil {
			t.Error("sparse output should not carry rna metrics")
		}
	})

	t.Run("one library", func(t *testing.T) {
		modelSample = gentraptest.Sample2
		modelLibrary = gentraptest.Library
		outputFormat = "json"
		defer func() { modelSample, modelLibrary, outputFormat = "", "", "" }()

		var buf bytes.Buffer
		modelCmd.SetOut(&buf)
		if err := runModel(modelCmd, []string{summaryPath}); err != nil {
			t.Fatalf("runModel: %v", err)
		}

		var out output.LibraryOutput
		if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out.Name != gentraptest.Library || out.PairedEnd {
			t.Errorf("library = %+v", out)
		}
		if len(out.FastQC) != 2 {
			t.Errorf("expected 2 fastqc reports, got %d", len(out.FastQC))
		}
	})

	t.Run("errors", func(t *testing.T) {
		defer func() { modelSample, modelLibrary = "", "" }()

		modelSample, modelLibrary = "", gentraptest.Library
		if err := runModel(modelCmd, []string{summaryPath}); err == nil {
			t.Error("expected error for --library without --sample")
		}

		modelSample, modelLibrary = "sample_9", ""
		err := runModel(modelCmd, []string{summaryPath})
		if err == nil || !strings.Contains(err.Error(), "sample not found") {
			t.Errorf("expected sample not found, got %v", err)
		}

		modelSample = ""
		if err := runModel(modelCmd, []string{summaryPath + ".missing"}); err == nil {
			t.Error("expected error for missing summary")
		}
	})
}
