package gentrap

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/summary"
	"go.uber.org/zap"
)

// Role names a FastQC file registered by the flexiprep stage.
type Role string

const (
	RoleR1   Role = "fastqc_R1"
	RoleR2   Role = "fastqc_R2"
	RoleR1QC Role = "fastqc_R1_qc"
	RoleR2QC Role = "fastqc_R2_qc"
)

// Roles returns the FastQC roles in the order they are resolved.
func Roles() []Role {
	return []Role{RoleR1, RoleR2, RoleR1QC, RoleR2QC}
}

// Metrics are the alignment and RNA metrics shared by samples and libraries.
type Metrics struct {
	AlnMetrics          map[string]any `json:"aln_metrics" yaml:"aln_metrics"`
	InsertsMetricsFiles map[string]any `json:"inserts_metrics_files" yaml:"inserts_metrics_files"`
	RNAMetricsFiles     map[string]any `json:"rna_metrics_files" yaml:"rna_metrics_files"`
	RNAMetrics          RNAMetrics     `json:"rna_metrics,omitempty" yaml:"rna_metrics,omitempty"`
}

// HasRNAMetrics reports whether the RNA metrics stage produced any stats.
func (m Metrics) HasRNAMetrics() bool {
	return m.RNAMetrics != nil
}

func newMetrics(frag summary.Fragment, policy ZeroDivisionPolicy) (Metrics, error) {
	bam := frag.Section("bammetrics")
	gentrap := frag.Section("gentrap")

	rna, err := DeriveRNAMetrics(gentrap.Dig("stats", "rna_metrics"), policy)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		AlnMetrics:          bam.Dig("stats", "alignment_metrics").Raw(),
		InsertsMetricsFiles: bam.Dig("files", "insert_size_metrics").Raw(),
		RNAMetricsFiles:     gentrap.Dig("files", "rna_metrics").Raw(),
		RNAMetrics:          rna,
	}, nil
}

// Library is one sequencing library of a sample.
type Library struct {
	Name   string  `json:"name" yaml:"name"`
	Run    *Run    `json:"-" yaml:"-"`
	Sample *Sample `json:"-" yaml:"-"`

	Flexiprep      map[string]any `json:"flexiprep" yaml:"flexiprep"`
	FlexiprepFiles map[string]any `json:"flexiprep_files" yaml:"flexiprep_files"`
	Clipping       bool           `json:"clipping" yaml:"clipping"`
	Trimming       bool           `json:"trimming" yaml:"trimming"`
	IsPairedEnd    bool           `json:"is_paired_end" yaml:"is_paired_end"`

	// FastQC holds the parsed report of every role registered for the
	// library, and FastQCFiles the registry entry it was read from. Both are
	// keyed by the role name so templates can write .FastQC.fastqc_R1.
	FastQC      map[string]*fastqc.Report `json:"fastqc" yaml:"fastqc"`
	FastQCFiles map[string]map[string]any `json:"fastqc_files" yaml:"fastqc_files"`

	Metrics `yaml:",inline"`

	raw summary.Fragment
}

func newLibrary(run *Run, sample *Sample, name string, frag summary.Fragment, opts Options) (*Library, error) {
	flexiprep := frag.Section("flexiprep")
	settings := flexiprep.Section("settings")

	skipClip, err := settings.Bool("skip_clip")
	if err != nil {
		return nil, err
	}
	skipTrim, err := settings.Bool("skip_trim")
	if err != nil {
		return nil, err
	}
	paired, err := settings.Bool("paired")
	if err != nil {
		return nil, err
	}

	metrics, err := newMetrics(frag, opts.ZeroDivision)
	if err != nil {
		return nil, err
	}

	lib := &Library{
		Name:           name,
		Run:            run,
		Sample:         sample,
		Flexiprep:      flexiprep.Raw(),
		FlexiprepFiles: flexiprep.Dig("files", "pipeline").Raw(),
		Clipping:       !skipClip,
		Trimming:       !skipTrim,
		IsPairedEnd:    paired,
		FastQC:         make(map[string]*fastqc.Report),
		FastQCFiles:    make(map[string]map[string]any),
		Metrics:        metrics,
		raw:            frag,
	}

	files := flexiprep.Section("files")
	for _, role := range Roles() {
		entry, err := files.OptionalSection(string(role))
		if err != nil {
			return nil, err
		}
		if !entry.Present() {
			continue
		}
		path, err := entry.Section("fastqc_data").String("path")
		if err != nil {
			return nil, err
		}
		report, err := fastqc.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("library %s/%s %s: %w", sample.Name, name, role, err)
		}
		opts.Logger.Debug("parsed fastqc report",
			zap.String("sample", sample.Name),
			zap.String("library", name),
			zap.String("role", string(role)),
			zap.String("path", path),
			zap.Int("modules", report.Len()))
		lib.FastQC[string(role)] = report
		lib.FastQCFiles[string(role)] = entry.Raw()
	}

	return lib, nil
}

// Report returns the FastQC report parsed for role.
func (l *Library) Report(role Role) (*fastqc.Report, bool) {
	r, ok := l.FastQC[string(role)]
	return r, ok
}

// Reports returns the parsed FastQC reports in role order.
func (l *Library) Reports() []*fastqc.Report {
	var out []*fastqc.Report
	for _, role := range Roles() {
		if r, ok := l.FastQC[string(role)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Raw returns the library's summary fragment.
func (l *Library) Raw() map[string]any {
	return l.raw.Raw()
}

func (l *Library) String() string {
	return fmt.Sprintf("Library(sample=%q, lib=%q)", l.Sample.Name, l.Name)
}
