package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/gentrap/gentraptest"
)

func TestFastQCCommand(t *testing.T) {
	setupCmdTest(t)
	path := gentraptest.WriteFastQC(t, t.TempDir())

	t.Run("summary", func(t *testing.T) {
		outputFormat = "json"
		defer func() { outputFormat = "" }()

		var buf bytes.Buffer
		fastqcCmd.SetOut(&buf)
		if err := runFastQC(fastqcCmd, []string{path}); err != nil {
			t.Fatalf("runFastQC: %v", err)
		}

		var got fastqcSummary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Version != "0.11.2" {
			t.Errorf("version = %q, want 0.11.2", got.Version)
		}
		if len(got.Checksum) != 64 {
			t.Errorf("checksum = %q, want a sha256 hex digest", got.Checksum)
		}
		if got.Counts["pass"] != 7 || got.Counts["warn"] != 2 || got.Counts["fail"] != 2 {
			t.Errorf("counts = %v", got.Counts)
		}
		wantFails := []string{"Per base sequence content", "Kmer content"}
		if strings.Join(got.Fails, ",") != strings.Join(wantFails, ",") {
			t.Errorf("fails = %v, want %v", got.Fails, wantFails)
		}
		if got.Modules != nil {
			t.Error("medium density should not include module bodies")
		}
	})

	t.Run("dense", func(t *testing.T) {
		outputDensity = "dense"
		defer func() { outputDensity = "" }()

		var buf bytes.Buffer
		fastqcCmd.SetOut(&buf)
		if err := runFastQC(fastqcCmd, []string{path}); err != nil {
			t.Fatalf("runFastQC: %v", err)
		}
		if !strings.Contains(buf.String(), "modules:") {
			t.Error("dense output should include modules")
		}
	})

	t.Run("raw module", func(t *testing.T) {
		fastqcRaw = "kmer_content"
		defer func() { fastqcRaw = "" }()

		var buf bytes.Buffer
		fastqcCmd.SetOut(&buf)
		if err := runFastQC(fastqcCmd, []string{path}); err != nil {
			t.Fatalf("runFastQC: %v", err)
		}
		result := buf.String()
		if !strings.HasPrefix(result, ">>Kmer content\tfail") {
			t.Errorf("raw output should start with the module header:\n%s", result)
		}
		if !strings.HasSuffix(result, ">>END_MODULE\n") {
			t.Errorf("raw output should end with the end marker:\n%s", result)
		}
	})

	t.Run("unknown raw module", func(t *testing.T) {
		fastqcRaw = "adapter_content"
		defer func() { fastqcRaw = "" }()

		err := runFastQC(fastqcCmd, []string{path})
		if !errors.Is(err, fastqc.ErrMissingModule) {
			t.Errorf("expected ErrMissingModule, got %v", err)
		}
	})
}
