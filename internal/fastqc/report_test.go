package fastqc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseFile(t *testing.T) {
	report, err := ParseFile(filepath.Join("testdata", "fastqc_data.txt"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if report.Version != "0.11.2" {
		t.Errorf("expected version 0.11.2, got %q", report.Version)
	}
	if report.Len() != 11 {
		t.Errorf("expected 11 modules, got %d", report.Len())
	}
	if len(report.Checksum) != 64 {
		t.Errorf("expected a sha256 hex checksum, got %q", report.Checksum)
	}

	wantPasses := []string{
		"Basic Statistics",
		"Per base sequence quality",
		"Per sequence quality scores",
		"Per sequence GC content",
		"Per base N content",
		"Sequence Length Distribution",
		"Overrepresented sequences",
	}
	if !reflect.DeepEqual(report.Passes(), wantPasses) {
		t.Errorf("passes = %v, want %v", report.Passes(), wantPasses)
	}
	if want := []string{"Per base GC content", "Sequence Duplication Levels"}; !reflect.DeepEqual(report.Warns(), want) {
		t.Errorf("warns = %v, want %v", report.Warns(), want)
	}
	if want := []string{"Per base sequence content", "Kmer content"}; !reflect.DeepEqual(report.Fails(), want) {
		t.Errorf("fails = %v, want %v", report.Fails(), want)
	}

	if total := report.PassesNum() + report.WarnsNum() + report.FailsNum(); total != report.Len() {
		t.Errorf("status counts sum to %d, want %d", total, report.Len())
	}

	stats, err := report.BasicStatistics()
	if err != nil {
		t.Fatalf("BasicStatistics failed: %v", err)
	}
	if stats.Stats["Total Sequences"] != "250000" {
		t.Errorf("expected 250000 total sequences, got %q", stats.Stats["Total Sequences"])
	}

	if _, ok := report.Modules()["adapter_content"]; ok {
		t.Error("unrecognized module should not be retained")
	}
}

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestParseRoundTripRawLines(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "fastqc_data.txt"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	report, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for _, kind := range Kinds() {
		m, err := report.Module(kind)
		if err != nil {
			t.Fatalf("module %s: %v", kind, err)
		}
		if !strings.Contains(string(data), m.String()) {
			t.Errorf("module %s raw text is not a verbatim slice of the input", kind)
		}
		if !strings.HasPrefix(m.String(), ModulePrefix+kind.Name()) {
			t.Errorf("module %s raw text does not start with its header", kind)
		}
	}
}

func TestParseTruncatedModule(t *testing.T) {
	input := "##FastQC\t0.11.2\n" +
		">>Basic Statistics\tpass\n" +
		"#Measure\tValue\n" +
		"Filename\ta.fq\n" +
		">>END_MODULE\n" +
		">>Kmer content\tfail\n" +
		"#Sequence\tCount\n" +
		"AAAAA\t12\n"

	_, err := Parse(strings.NewReader(input))
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != 6 {
		t.Errorf("expected error at line 6, got %d", perr.Line)
	}
	if perr.Module != "Kmer content" {
		t.Errorf("expected module 'Kmer content', got %q", perr.Module)
	}
}

func TestParseFileErrorCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fastqc_data.txt")
	content := ">>Per base N content\tmaybe\n#Base\tN-Count\n>>END_MODULE\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	_, err := ParseFile(path)
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":1") {
		t.Errorf("expected error to carry %s:1, got %q", path, err.Error())
	}
	if !strings.Contains(err.Error(), `"maybe"`) {
		t.Errorf("expected error to name the bad token, got %q", err.Error())
	}
}

func TestParseIgnoresUnknownBlocksAndStrayLines(t *testing.T) {
	input := "some preamble\n" +
		">>Adapter Content\tpass\n" +
		"#Position\tAdapter\n" +
		"1\t0.0\n" +
		">>END_MODULE\n" +
		">>Per base N content\twarn\n" +
		"#Base\tN-Count\n" +
		"1\t0.5\n" +
		">>END_MODULE\n"

	report, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if report.Len() != 1 {
		t.Fatalf("expected 1 module, got %d", report.Len())
	}
	if report.Version != "" {
		t.Errorf("expected no version, got %q", report.Version)
	}
	if !report.Has(PerBaseNContent) {
		t.Error("expected per base N content to be present")
	}
}

func TestParseDuplicateModuleOverwrites(t *testing.T) {
	input := ">>Kmer content\tfail\n>>END_MODULE\n" +
		">>Per base N content\tpass\n>>END_MODULE\n" +
		">>Kmer content\tpass\n>>END_MODULE\n"

	report, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	m, err := report.KmerContent()
	if err != nil {
		t.Fatalf("KmerContent failed: %v", err)
	}
	if m.Status != StatusPass {
		t.Errorf("expected later module to win, got status %q", m.Status)
	}
	if want := []string{"Kmer content", "Per base N content"}; !reflect.DeepEqual(report.Passes(), want) {
		t.Errorf("passes = %v, want %v (first-seen order)", report.Passes(), want)
	}
	if report.FailsNum() != 0 {
		t.Errorf("expected no failures, got %v", report.Fails())
	}
}

func TestReportMissingModule(t *testing.T) {
	report, err := Parse(strings.NewReader(">>Kmer content\tpass\n>>END_MODULE\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, err := report.BasicStatistics(); !errors.Is(err, ErrMissingModule) {
		t.Errorf("expected ErrMissingModule, got %v", err)
	}
	if _, err := report.Get("not_a_module"); !errors.Is(err, ErrMissingModule) {
		t.Errorf("expected ErrMissingModule for unknown key, got %v", err)
	}
	if _, err := report.Get("kmer_content"); err != nil {
		t.Errorf("Get(kmer_content) failed: %v", err)
	}
}

func TestReportStatusCounts(t *testing.T) {
	input := ">>Kmer content\tfail\n>>END_MODULE\n" +
		">>Per base N content\tpass\n>>END_MODULE\n" +
		">>Per base GC content\twarn\n>>END_MODULE\n" +
		">>Per sequence GC content\tpass\n>>END_MODULE\n"

	report, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	counts := report.StatusCounts()
	if counts[StatusPass] != 2 || counts[StatusWarn] != 1 || counts[StatusFail] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestReportMarshal(t *testing.T) {
	report, err := ParseFile(filepath.Join("testdata", "fastqc_data.txt"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if decoded["version"] != "0.11.2" {
		t.Errorf("expected version in JSON, got %v", decoded["version"])
	}
	modules, ok := decoded["modules"].(map[string]interface{})
	if !ok || len(modules) != 11 {
		t.Errorf("expected 11 modules in JSON, got %v", decoded["modules"])
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "basic_statistics:") {
		t.Errorf("expected basic_statistics key in YAML output:\n%s", out)
	}
}

func TestReportModuleAccessors(t *testing.T) {
	report, err := ParseFile(filepath.Join("testdata", "fastqc_data.txt"))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	accessors := map[ModuleKind]func() (*Module, error){
		BasicStatistics:            report.BasicStatistics,
		PerBaseSequenceQuality:     report.PerBaseSequenceQuality,
		PerSequenceQualityScores:   report.PerSequenceQualityScores,
		PerBaseSequenceContent:     report.PerBaseSequenceContent,
		PerBaseGCContent:           report.PerBaseGCContent,
		PerSequenceGCContent:       report.PerSequenceGCContent,
		PerBaseNContent:            report.PerBaseNContent,
		SequenceLengthDistribution: report.SequenceLengthDistribution,
		SequenceDuplicationLevels:  report.SequenceDuplicationLevels,
		OverrepresentedSequences:   report.OverrepresentedSequences,
		KmerContent:                report.KmerContent,
	}
	if len(accessors) != len(Kinds()) {
		t.Fatalf("expected an accessor per kind, have %d of %d", len(accessors), len(Kinds()))
	}
	for kind, get := range accessors {
		m, err := get()
		if err != nil {
			t.Errorf("%s: %v", kind.Name(), err)
			continue
		}
		if m.Name != kind.Name() {
			t.Errorf("accessor for %s returned %s", kind.Name(), m.Name)
		}
	}
}
