// Package fastqc parses FastQC "fastqc_data.txt" reports.
//
// A report is a sequence of self-delimiting modules:
//
//	##FastQC	0.11.2
//	>>Basic Statistics	pass
//	#Measure	Value
//	Filename	reads_R1.fq.gz
//	>>END_MODULE
//
// Only the eleven modules listed in Kinds are collected; every other line
// outside a module is ignored.
package fastqc

import (
	"fmt"
	"strings"
)

const (
	// EndMarker terminates every module block.
	EndMarker = ">>END_MODULE"

	// ModulePrefix starts every module header line.
	ModulePrefix = ">>"

	// VersionMarker starts the line carrying the FastQC version.
	VersionMarker = "##FastQC"
)

// Status is the QC verdict FastQC assigns to a module.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPass, StatusWarn, StatusFail}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a module status token. The token must match exactly.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPass, StatusWarn, StatusFail:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// ModuleKind identifies one of the recognized FastQC modules.
type ModuleKind int

const (
	BasicStatistics ModuleKind = iota
	PerBaseSequenceQuality
	PerSequenceQualityScores
	PerBaseSequenceContent
	PerBaseGCContent
	PerSequenceGCContent
	PerBaseNContent
	SequenceLengthDistribution
	SequenceDuplicationLevels
	OverrepresentedSequences
	KmerContent

	numKinds
)

// kindTable maps each kind to its header name and attribute key.
var kindTable = [numKinds]struct {
	name string
	key  string
}{
	BasicStatistics:            {"Basic Statistics", "basic_statistics"},
	PerBaseSequenceQuality:     {"Per base sequence quality", "per_base_sequence_quality"},
	PerSequenceQualityScores:   {"Per sequence quality scores", "per_sequence_quality_scores"},
	PerBaseSequenceContent:     {"Per base sequence content", "per_base_sequence_content"},
	PerBaseGCContent:           {"Per base GC content", "per_base_gc_content"},
	PerSequenceGCContent:       {"Per sequence GC content", "per_sequence_gc_content"},
	PerBaseNContent:            {"Per base N content", "per_base_n_content"},
	SequenceLengthDistribution: {"Sequence Length Distribution", "sequence_length_distribution"},
	SequenceDuplicationLevels:  {"Sequence Duplication Levels", "sequence_duplication_levels"},
	OverrepresentedSequences:   {"Overrepresented sequences", "overrepresented_sequences"},
	KmerContent:                {"Kmer content", "kmer_content"},
}

// Kinds returns all recognized module kinds in report order.
func Kinds() []ModuleKind {
	kinds := make([]ModuleKind, numKinds)
	for i := range kinds {
		kinds[i] = ModuleKind(i)
	}
	return kinds
}

// Name returns the module name as written in the report header line.
func (k ModuleKind) Name() string {
	if k < 0 || k >= numKinds {
		return ""
	}
	return kindTable[k].name
}

// Key returns the canonical attribute key, e.g. "basic_statistics".
func (k ModuleKind) Key() string {
	if k < 0 || k >= numKinds {
		return ""
	}
	return kindTable[k].key
}

// String returns the module name.
func (k ModuleKind) String() string {
	return k.Name()
}

// LookupMarker resolves the first tab field of a header line (">>Name")
// to a module kind.
func LookupMarker(field string) (ModuleKind, bool) {
	if !strings.HasPrefix(field, ModulePrefix) {
		return 0, false
	}
	return LookupName(field[len(ModulePrefix):])
}

// LookupName resolves a module name to its kind.
func LookupName(name string) (ModuleKind, bool) {
	for i, entry := range kindTable {
		if entry.name == name {
			return ModuleKind(i), true
		}
	}
	return 0, false
}

// LookupKey resolves an attribute key to its kind.
func LookupKey(key string) (ModuleKind, bool) {
	for i, entry := range kindTable {
		if entry.key == key {
			return ModuleKind(i), true
		}
	}
	return 0, false
}

// Module is one parsed module block.
//
// Rows holds the data body of every module except Basic Statistics, whose
// two-column body is collapsed into Stats instead.
type Module struct {
	RawLines []string          `yaml:"-" json:"-"`
	Name     string            `yaml:"name" json:"name"`
	Status   Status            `yaml:"status" json:"status"`
	Columns  []string          `yaml:"columns,omitempty" json:"columns,omitempty"`
	Rows     [][]string        `yaml:"rows,omitempty" json:"rows,omitempty"`
	Stats    map[string]string `yaml:"stats,omitempty" json:"stats,omitempty"`
}

// NewModule builds a Module from its raw lines, header through end marker.
// Each line keeps its original line ending.
func NewModule(raw []string) (*Module, error) {
	if len(raw) == 0 || !strings.HasPrefix(raw[len(raw)-1], EndMarker) {
		return nil, ErrMissingEndMarker
	}

	header := strings.Split(strings.TrimSpace(raw[0]), "\t")
	name := strings.TrimPrefix(header[0], ModulePrefix)
	status, err := ParseStatus(header[len(header)-1])
	if err != nil {
		return nil, err
	}

	m := &Module{
		RawLines: raw,
		Name:     name,
		Status:   status,
	}

	// a module that passes with nothing to report has no column line
	if len(raw) < 3 {
		if name == BasicStatistics.Name() {
			m.Stats = map[string]string{}
		}
		return m, nil
	}

	columnLine := raw[1]
	if columnLine != "" {
		columnLine = columnLine[1:]
	}
	m.Columns = strings.Split(strings.TrimSpace(columnLine), "\t")

	body := raw[2 : len(raw)-1]
	if name == BasicStatistics.Name() {
		m.Stats = make(map[string]string, len(body))
		for _, line := range body {
			fields := strings.Split(strings.TrimSpace(line), "\t")
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: %s row has %d fields, want 2", ErrMalformedRow, name, len(fields))
			}
			m.Stats[fields[0]] = fields[1]
		}
		return m, nil
	}

	m.Rows = make([][]string, 0, len(body))
	for _, line := range body {
		m.Rows = append(m.Rows, strings.Split(strings.TrimSpace(line), "\t"))
	}
	return m, nil
}

// String returns the raw module text exactly as read.
func (m *Module) String() string {
	return strings.Join(m.RawLines, "")
}

// Kind returns the module kind, if the module name is a recognized one.
func (m *Module) Kind() (ModuleKind, bool) {
	return LookupName(m.Name)
}

// Data returns the module body: map[string]string for Basic Statistics,
// [][]string for every other module.
func (m *Module) Data() any {
	if m.Stats != nil {
		return m.Stats
	}
	return m.Rows
}
