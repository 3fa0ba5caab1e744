package fastqc

import (
	"errors"
	"strings"
	"testing"
)

func lines(text string) []string {
	return strings.SplitAfter(text, "\n")
}

func TestNewModuleBasicStatistics(t *testing.T) {
	raw := []string{
		">>Basic Statistics\tpass\n",
		"#Measure\tValue\n",
		"Filename\tsample_R1.fq.gz\n",
		"Total Sequences\t1000\n",
		"%GC\t47\n",
		">>END_MODULE\n",
	}

	m, err := NewModule(raw)
	if err != nil {
		t.Fatalf("NewModule failed: %v", err)
	}

	if m.Name != "Basic Statistics" {
		t.Errorf("expected name 'Basic Statistics', got %q", m.Name)
	}
	if m.Status != StatusPass {
		t.Errorf("expected status pass, got %q", m.Status)
	}
	if len(m.Columns) != 2 || m.Columns[0] != "Measure" || m.Columns[1] != "Value" {
		t.Errorf("unexpected columns: %v", m.Columns)
	}
	if m.Rows != nil {
		t.Errorf("basic statistics should not keep rows, got %v", m.Rows)
	}
	if got := m.Stats["Total Sequences"]; got != "1000" {
		t.Errorf("expected Total Sequences 1000, got %q", got)
	}
	if got := m.Stats["%GC"]; got != "47" {
		t.Errorf("expected %%GC 47, got %q", got)
	}
	if _, ok := m.Data().(map[string]string); !ok {
		t.Errorf("expected Data() to be a map, got %T", m.Data())
	}
}

func TestNewModuleRows(t *testing.T) {
	raw := lines(">>Per base sequence quality\twarn\n" +
		"#Base\tMean\tMedian\n" +
		"1\t32.5\t34.0\n" +
		"2\t32.1\t34.0\n" +
		">>END_MODULE\n")
	raw = raw[:len(raw)-1] // drop trailing empty split

	m, err := NewModule(raw)
	if err != nil {
		t.Fatalf("NewModule failed: %v", err)
	}

	if m.Status != StatusWarn {
		t.Errorf("expected status warn, got %q", m.Status)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.Rows))
	}
	if m.Rows[1][0] != "2" || m.Rows[1][2] != "34.0" {
		t.Errorf("unexpected second row: %v", m.Rows[1])
	}
	if kind, ok := m.Kind(); !ok || kind != PerBaseSequenceQuality {
		t.Errorf("expected kind PerBaseSequenceQuality, got %v (%v)", kind, ok)
	}
}

func TestNewModuleWithoutColumns(t *testing.T) {
	m, err := NewModule([]string{">>Overrepresented sequences\tpass\n", ">>END_MODULE\n"})
	if err != nil {
		t.Fatalf("NewModule failed: %v", err)
	}
	if m.Columns != nil || len(m.Rows) != 0 {
		t.Errorf("expected no columns and rows, got %v / %v", m.Columns, m.Rows)
	}
	if _, ok := m.Data().([][]string); !ok {
		t.Errorf("expected Data() to be rows, got %T", m.Data())
	}
}

func TestNewModuleBasicStatisticsWithoutColumns(t *testing.T) {
	m, err := NewModule([]string{">>Basic Statistics\tpass\n", ">>END_MODULE\n"})
	if err != nil {
		t.Fatalf("NewModule failed: %v", err)
	}
	stats, ok := m.Data().(map[string]string)
	if !ok {
		t.Fatalf("expected Data() to be a map, got %T", m.Data())
	}
	if stats == nil || len(stats) != 0 {
		t.Errorf("expected an empty non-nil map, got %#v", stats)
	}
}

func TestNewModuleRoundTrip(t *testing.T) {
	raw := []string{
		">>Kmer content\tfail\r\n",
		"#Sequence\tCount\tPValue\r\n",
		"AAAAA\t120\t0.0\r\n",
		">>END_MODULE",
	}

	m, err := NewModule(raw)
	if err != nil {
		t.Fatalf("NewModule failed: %v", err)
	}

	if got, want := m.String(), strings.Join(raw, ""); got != want {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestNewModuleErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want error
	}{
		{
			name: "empty",
			raw:  nil,
			want: ErrMissingEndMarker,
		},
		{
			name: "missing end marker",
			raw:  []string{">>Kmer content\tpass\n", "#Sequence\tCount\n", "AAAAA\t1\n"},
			want: ErrMissingEndMarker,
		},
		{
			name: "end marker not last",
			raw:  []string{">>Kmer content\tpass\n", ">>END_MODULE\n", "AAAAA\t1\n"},
			want: ErrMissingEndMarker,
		},
		{
			name: "unknown status",
			raw:  []string{">>Kmer content\tok\n", ">>END_MODULE\n"},
			want: ErrUnknownStatus,
		},
		{
			name: "status is case sensitive",
			raw:  []string{">>Kmer content\tPASS\n", ">>END_MODULE\n"},
			want: ErrUnknownStatus,
		},
		{
			name: "basic statistics row with three fields",
			raw: []string{
				">>Basic Statistics\tpass\n",
				"#Measure\tValue\n",
				"Filename\ta\tb\n",
				">>END_MODULE\n",
			},
			want: ErrMalformedRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModule(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pass", "warn", "fail"} {
		status, err := ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) failed: %v", s, err)
		}
		if status.String() != s {
			t.Errorf("ParseStatus(%q) = %q", s, status)
		}
	}

	_, err := ParseStatus("error")
	if err == nil || !strings.Contains(err.Error(), `"error"`) {
		t.Errorf("expected error naming the token, got %v", err)
	}
}

func TestModuleKindTable(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 11 {
		t.Fatalf("expected 11 module kinds, got %d", len(kinds))
	}

	seenKeys := make(map[string]bool)
	for _, kind := range kinds {
		if kind.Name() == "" || kind.Key() == "" {
			t.Errorf("kind %d has empty name or key", kind)
		}
		if seenKeys[kind.Key()] {
			t.Errorf("duplicate key %q", kind.Key())
		}
		seenKeys[kind.Key()] = true

		byMarker, ok := LookupMarker(ModulePrefix + kind.Name())
		if !ok || byMarker != kind {
			t.Errorf("LookupMarker(%q) = %v, %v", kind.Name(), byMarker, ok)
		}
		byKey, ok := LookupKey(kind.Key())
		if !ok || byKey != kind {
			t.Errorf("LookupKey(%q) = %v, %v", kind.Key(), byKey, ok)
		}
	}

	if _, ok := LookupMarker(">>Adapter Content"); ok {
		t.Error("Adapter Content should not be a recognized module")
	}
	if _, ok := LookupMarker("Basic Statistics"); ok {
		t.Error("marker without prefix should not resolve")
	}
	if ModuleKind(99).Key() != "" {
		t.Error("out of range kind should have an empty key")
	}
}
