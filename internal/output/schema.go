package output

import (
	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/gentrap"
)

// RunOutput is the dump of a gentrap.Run.
type RunOutput struct {
	Run         RunInfo            `yaml:"run" json:"run"`
	Executables []ExecutableOutput `yaml:"executables,omitempty" json:"executables,omitempty"`
	Samples     []SampleOutput     `yaml:"samples" json:"samples"`
}

// RunInfo holds the run-wide facts.
type RunInfo struct {
	SummaryFile string         `yaml:"summary_file" json:"summary_file"`
	Version     string         `yaml:"version" json:"version"`
	LibType     string         `yaml:"lib_type" json:"lib_type"`
	Samples     int            `yaml:"samples" json:"samples"`
	Libraries   int            `yaml:"libraries" json:"libraries"`
	Settings    map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
	Files       map[string]any `yaml:"files,omitempty" json:"files,omitempty"`
}

// ExecutableOutput is one curated executable.
type ExecutableOutput struct {
	Name    string `yaml:"name" json:"name"`
	Desc    string `yaml:"desc" json:"desc"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

// SampleOutput is one sample and its libraries.
type SampleOutput struct {
	Name       string          `yaml:"name" json:"name"`
	PairedEnd  bool            `yaml:"paired_end" json:"paired_end"`
	RNAMetrics map[string]any  `yaml:"rna_metrics,omitempty" json:"rna_metrics,omitempty"`
	AlnMetrics map[string]any  `yaml:"aln_metrics,omitempty" json:"aln_metrics,omitempty"`
	Libraries  []LibraryOutput `yaml:"libraries" json:"libraries"`
}

// LibraryOutput is one library.
type LibraryOutput struct {
	Name       string         `yaml:"name" json:"name"`
	PairedEnd  bool           `yaml:"paired_end" json:"paired_end"`
	Clipping   bool           `yaml:"clipping" json:"clipping"`
	Trimming   bool           `yaml:"trimming" json:"trimming"`
	RNAMetrics map[string]any `yaml:"rna_metrics,omitempty" json:"rna_metrics,omitempty"`
	AlnMetrics map[string]any `yaml:"aln_metrics,omitempty" json:"aln_metrics,omitempty"`
	FastQC     []FastQCOutput `yaml:"fastqc,omitempty" json:"fastqc,omitempty"`
	Flexiprep  map[string]any `yaml:"flexiprep,omitempty" json:"flexiprep,omitempty"`
}

// FastQCOutput summarizes one FastQC report of a library.
type FastQCOutput struct {
	Role    string                    `yaml:"role" json:"role"`
	Path    string                    `yaml:"path" json:"path"`
	Version string                    `yaml:"version" json:"version"`
	Passes  int                       `yaml:"passes" json:"passes"`
	Warns   int                       `yaml:"warns" json:"warns"`
	Fails   int                       `yaml:"fails" json:"fails"`
	Failed  []string                  `yaml:"failed,omitempty" json:"failed,omitempty"`
	Modules map[string]*fastqc.Module `yaml:"modules,omitempty" json:"modules,omitempty"`
}

// NewRunOutput flattens run into its dump at the given density.
func NewRunOutput(run *gentrap.Run, density Density) *RunOutput {
	out := &RunOutput{
		Run: RunInfo{
			SummaryFile: run.SummaryFile,
			Version:     run.Version,
			LibType:     string(run.LibType),
			Samples:     len(run.SampleNames),
			Libraries:   len(run.Libs),
		},
		Samples: make([]SampleOutput, 0, len(run.SampleNames)),
	}
	if density.IncludesRaw() {
		out.Run.Settings = run.Settings
		out.Run.Files = run.Files
	}
	if density.IncludesMetrics() {
		for _, exe := range run.CuratedExecutables() {
			out.Executables = append(out.Executables, ExecutableOutput{
				Name:    exe.Name,
				Desc:    exe.Desc,
				Version: exe.Version,
			})
		}
	}

	for _, s := range run.SamplesInOrder() {
		out.Samples = append(out.Samples, NewSampleOutput(s, density))
	}
	return out
}

// NewSampleOutput flattens one sample and its libraries.
func NewSampleOutput(s *gentrap.Sample, density Density) SampleOutput {
	so := SampleOutput{
		Name:      s.Name,
		PairedEnd: s.IsPairedEnd,
		Libraries: make([]LibraryOutput, 0, len(s.LibNames)),
	}
	if density.IncludesMetrics() {
		so.RNAMetrics = s.RNAMetrics
		so.AlnMetrics = nonEmpty(s.AlnMetrics)
	}
	for _, lib := range s.Libraries() {
		so.Libraries = append(so.Libraries, NewLibraryOutput(lib, density))
	}
	return so
}

// NewLibraryOutput flattens one library.
func NewLibraryOutput(lib *gentrap.Library, density Density) LibraryOutput {
	lo := LibraryOutput{
		Name:      lib.Name,
		PairedEnd: lib.IsPairedEnd,
		Clipping:  lib.Clipping,
		Trimming:  lib.Trimming,
	}
	if !density.IncludesMetrics() {
		return lo
	}
	lo.RNAMetrics = lib.RNAMetrics
	lo.AlnMetrics = nonEmpty(lib.AlnMetrics)
	if density.IncludesRaw() {
		lo.Flexiprep = lib.Flexiprep
	}

	for _, role := range gentrap.Roles() {
		r, ok := lib.Report(role)
		if !ok {
			continue
		}
		fo := FastQCOutput{
			Role:    string(role),
			Path:    r.Path,
			Version: r.Version,
			Passes:  r.PassesNum(),
			Warns:   r.WarnsNum(),
			Fails:   r.FailsNum(),
			Failed:  r.Fails(),
		}
		if density.IncludesModules() {
			fo.Modules = r.Modules()
		}
		lo.FastQC = append(lo.FastQC, fo)
	}
	return lo
}

func nonEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
