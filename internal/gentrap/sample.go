package gentrap

import (
	"fmt"

	"github.com/biopet/gentrap-report/internal/summary"
	"go.uber.org/zap"
)

// Sample is one biological sample of a run.
type Sample struct {
	Name        string `json:"name" yaml:"name"`
	Run         *Run   `json:"-" yaml:"-"`
	IsPairedEnd bool   `json:"is_paired_end" yaml:"is_paired_end"`

	Metrics `yaml:",inline"`

	LibNames []string            `json:"lib_names" yaml:"lib_names"`
	Libs     map[string]*Library `json:"libs" yaml:"libs"`

	raw summary.Fragment
}

func newSample(run *Run, name string, frag summary.Fragment, opts Options) (*Sample, error) {
	paired, err := frag.Dig("gentrap", "stats", "pipeline").Bool("all_paired")
	if err != nil {
		return nil, err
	}

	metrics, err := newMetrics(frag, opts.ZeroDivision)
	if err != nil {
		return nil, err
	}

	libraries, err := frag.RequireSection("libraries")
	if err != nil {
		return nil, err
	}

	s := &Sample{
		Name:        name,
		Run:         run,
		IsPairedEnd: paired,
		Metrics:     metrics,
		LibNames:    libraries.Keys(),
		raw:         frag,
	}
	s.Libs = make(map[string]*Library, len(s.LibNames))

	for _, libName := range s.LibNames {
		libFrag, err := libraries.RequireSection(libName)
		if err != nil {
			return nil, err
		}
		lib, err := newLibrary(run, s, libName, libFrag, opts)
		if err != nil {
			return nil, err
		}
		s.Libs[libName] = lib
	}

	opts.Logger.Debug("built sample",
		zap.String("sample", name),
		zap.Bool("paired", paired),
		zap.Int("libraries", len(s.LibNames)),
		zap.Bool("rna_metrics", s.HasRNAMetrics()))
	return s, nil
}

// Libraries returns the sample's libraries in name order.
func (s *Sample) Libraries() []*Library {
	out := make([]*Library, 0, len(s.LibNames))
	for _, name := range s.LibNames {
		out = append(out, s.Libs[name])
	}
	return out
}

// Library returns the named library.
func (s *Sample) Library(name string) (*Library, bool) {
	lib, ok := s.Libs[name]
	return lib, ok
}

// Raw returns the sample's summary fragment.
func (s *Sample) Raw() map[string]any {
	return s.raw.Raw()
}

func (s *Sample) String() string {
	return fmt.Sprintf("Sample(%q)", s.Name)
}
