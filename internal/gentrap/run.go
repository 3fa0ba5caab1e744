package gentrap

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/summary"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LibType describes the pairing of all samples in a run.
type LibType string

const (
	LibTypePaired LibType = "all paired end"
	LibTypeSingle LibType = "all single end"
	LibTypeMixed  LibType = "mixed (single end and paired end)"
)

// BuiltinVersion is reported for the Picard tools bundled with the pipeline,
// which record no version of their own.
const BuiltinVersion = "built-in"

type displayedExecutable struct {
	key, desc string
}

// displayedExecutables are copied from the summary, in this order, when present.
var displayedExecutables = []displayedExecutable{
	{"cutadapt", "adapter clipping"},
	{"sickle", "base quality trimming"},
	{"fastqc", "sequence metrics collection"},
	{"gsnap", "alignment"},
	{"tophat", "alignment"},
	{"star", "alignment"},
	{"htseqcount", "fragment counting"},
}

// Aliased executables report the version of the sub tool they were run as.
const (
	picardKey    = "picard"
	picardSource = "collectalignmentsummarymetrics"
	picardDesc   = "alignment_metrics_collection"

	samtoolsKey    = "samtools"
	samtoolsSource = "samtoolsview"
	samtoolsDesc   = "various post-alignment processing"
)

// Run is the root of the model: one pipeline run with all its samples.
type Run struct {
	SummaryFile string `json:"summary_file" yaml:"summary_file"`

	Files          map[string]any `json:"files" yaml:"files"`
	Settings       map[string]any `json:"settings" yaml:"settings"`
	Version        string         `json:"version" yaml:"version"`
	AllExecutables map[string]any `json:"all_executables" yaml:"all_executables"`

	// Executables is the curated subset shown in reports, each entry
	// carrying a "desc". ExecutableNames lists its keys in display order.
	Executables     map[string]map[string]any `json:"executables" yaml:"executables"`
	ExecutableNames []string                  `json:"executable_names" yaml:"executable_names"`

	SampleNames []string           `json:"sample_names" yaml:"sample_names"`
	Samples     map[string]*Sample `json:"samples" yaml:"samples"`
	Libs        []*Library         `json:"-" yaml:"-"`
	LibType     LibType            `json:"lib_type" yaml:"lib_type"`

	raw summary.Fragment
}

// Load reads the summary file at path and builds its Run.
func Load(path string, opts Options) (*Run, error) {
	root, err := summary.Load(path)
	if err != nil {
		return nil, err
	}
	return NewRun(root, path, opts)
}

// NewRun builds a Run from a decoded summary document. Any missing required
// field aborts the build and no partial Run is returned.
func NewRun(root summary.Fragment, summaryFile string, opts Options) (*Run, error) {
	opts = opts.withDefaults()

	pipeline, err := root.RequireSection("gentrap")
	if err != nil {
		return nil, err
	}
	settings, err := pipeline.RequireSection("settings")
	if err != nil {
		return nil, err
	}
	executables, err := pipeline.RequireSection("executables")
	if err != nil {
		return nil, err
	}

	run := &Run{
		SummaryFile:    summaryFile,
		Files:          pipeline.Dig("files", "pipeline").Raw(),
		Settings:       settings.Raw(),
		Version:        settings.StringOr("version", "unknown"),
		AllExecutables: executables.Raw(),
		raw:            root,
	}
	if err := run.curateExecutables(executables); err != nil {
		return nil, err
	}

	samples, err := root.RequireSection("samples")
	if err != nil {
		return nil, err
	}
	run.SampleNames = samples.Keys()

	built, err := buildSamples(run, samples, opts)
	if err != nil {
		return nil, err
	}
	run.Samples = make(map[string]*Sample, len(built))
	for _, s := range built {
		run.Samples[s.Name] = s
		run.Libs = append(run.Libs, s.Libraries()...)
	}
	run.LibType = classify(built)

	opts.Logger.Debug("built run",
		zap.String("summary", summaryFile),
		zap.String("version", run.Version),
		zap.Int("samples", len(run.SampleNames)),
		zap.Int("libraries", len(run.Libs)),
		zap.String("lib_type", string(run.LibType)))
	return run, nil
}

// buildSamples builds every sample in name order. With more than one worker
// the samples are built concurrently, and the error reported is the one of
// the first failing sample in name order, as it would be sequentially.
func buildSamples(run *Run, samples summary.Fragment, opts Options) ([]*Sample, error) {
	names := run.SampleNames
	out := make([]*Sample, len(names))
	errs := make([]error, len(names))

	build := func(i int) {
		frag, err := samples.RequireSection(names[i])
		if err != nil {
			errs[i] = err
			return
		}
		out[i], errs[i] = newSample(run, names[i], frag, opts)
	}

	if opts.Workers < 2 {
		for i := range names {
			build(i)
			if errs[i] != nil {
				return nil, errs[i]
			}
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range names {
		g.Go(func() error {
			build(i)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Run) curateExecutables(all summary.Fragment) error {
	r.Executables = make(map[string]map[string]any)

	add := func(key, source, desc string) (map[string]any, error) {
		entry, err := all.OptionalSection(source)
		if err != nil {
			return nil, err
		}
		if !entry.Present() {
			return nil, nil
		}
		exe := entry.Raw()
		exe["desc"] = desc
		r.Executables[key] = exe
		r.ExecutableNames = append(r.ExecutableNames, key)
		return exe, nil
	}

	for _, d := range displayedExecutables {
		if _, err := add(d.key, d.key, d.desc); err != nil {
			return err
		}
	}

	picard, err := add(picardKey, picardSource, picardDesc)
	if err != nil {
		return err
	}
	if picard != nil && picard["version"] == nil {
		picard["version"] = BuiltinVersion
	}

	if _, err := add(samtoolsKey, samtoolsSource, samtoolsDesc); err != nil {
		return err
	}
	return nil
}

// classify labels the pairing of samples. A run without samples counts as
// all paired end.
func classify(samples []*Sample) LibType {
	paired, single := 0, 0
	for _, s := range samples {
		if s.IsPairedEnd {
			paired++
		} else {
			single++
		}
	}
	switch {
	case single == 0:
		return LibTypePaired
	case paired == 0:
		return LibTypeSingle
	default:
		return LibTypeMixed
	}
}

// Sample returns the named sample.
func (r *Run) Sample(name string) (*Sample, bool) {
	s, ok := r.Samples[name]
	return s, ok
}

// SamplesInOrder returns the samples in name order.
func (r *Run) SamplesInOrder() []*Sample {
	out := make([]*Sample, 0, len(r.SampleNames))
	for _, name := range r.SampleNames {
		out = append(out, r.Samples[name])
	}
	return out
}

// Library returns the named library of the named sample.
func (r *Run) Library(sample, lib string) (*Library, bool) {
	s, ok := r.Samples[sample]
	if !ok {
		return nil, false
	}
	return s.Library(lib)
}

// CuratedExecutables returns the curated executables in display order.
func (r *Run) CuratedExecutables() []Executable {
	out := make([]Executable, 0, len(r.ExecutableNames))
	for _, name := range r.ExecutableNames {
		exe := r.Executables[name]
		out = append(out, Executable{
			Name:    name,
			Desc:    fmt.Sprint(exe["desc"]),
			Version: versionString(exe["version"]),
			Entry:   exe,
		})
	}
	return out
}

// Executable is a flattened view of a curated executable.
type Executable struct {
	Name    string
	Desc    string
	Version string
	Entry   map[string]any
}

func versionString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Raw returns the whole summary document.
func (r *Run) Raw() map[string]any {
	return r.raw.Raw()
}

func (r *Run) String() string {
	return fmt.Sprintf("Run(%q)", r.SummaryFile)
}
