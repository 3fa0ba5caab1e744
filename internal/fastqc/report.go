package fastqc

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Report holds the recognized modules parsed from one FastQC data file.
type Report struct {
	Path     string // source file, empty when parsed from a reader
	Version  string // FastQC version from the "##FastQC" line
	Checksum string // sha256 of the file contents, set by ParseFile

	modules map[ModuleKind]*Module
	order   []ModuleKind // first-seen order
}

// ParseFile opens and parses a FastQC data file.
func ParseFile(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fastqc file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	report, err := Parse(io.TeeReader(file, hash))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}

	report.Path = path
	report.Checksum = hex.EncodeToString(hash.Sum(nil))
	return report, nil
}

// Parse reads a FastQC report line by line.
//
// A recognized module header starts collecting lines up to and including
// the end marker. A later module of the same kind replaces the earlier one.
// A truncated or malformed module aborts the whole parse.
func Parse(r io.Reader) (*Report, error) {
	report := &Report{
		modules: make(map[ModuleKind]*Module),
	}

	br := bufio.NewReader(r)
	lineNum := 0

	for {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("read fastqc report: %w", err)
		}
		if line == "" {
			break
		}
		lineNum++

		if strings.HasPrefix(line, VersionMarker) {
			if fields := strings.Fields(line); len(fields) > 1 {
				report.Version = fields[1]
			}
			continue
		}

		first, _, _ := strings.Cut(strings.TrimSpace(line), "\t")
		kind, ok := LookupMarker(first)
		if !ok {
			continue
		}

		start := lineNum
		raw, err := readModule(br, line)
		lineNum += len(raw) - 1
		if err != nil {
			return nil, &ParseError{Line: start, Module: kind.Name(), Err: err}
		}

		module, err := NewModule(raw)
		if err != nil {
			return nil, &ParseError{Line: start, Module: kind.Name(), Err: err}
		}
		report.set(kind, module)
	}

	return report, nil
}

// readLine returns the next line including its terminator, or "" at end of input.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err == io.EOF {
		return line, nil
	}
	return line, err
}

// readModule collects lines from the header through the end marker.
func readModule(br *bufio.Reader, header string) ([]string, error) {
	raw := []string{header}
	line := header
	for !strings.HasPrefix(line, EndMarker) {
		next, err := readLine(br)
		if err != nil {
			return raw, err
		}
		if next == "" {
			return raw, ErrUnexpectedEOF
		}
		raw = append(raw, next)
		line = next
	}
	return raw, nil
}

func (r *Report) set(kind ModuleKind, m *Module) {
	if _, seen := r.modules[kind]; !seen {
		r.order = append(r.order, kind)
	}
	r.modules[kind] = m
}

// Modules returns the parsed modules keyed by attribute key.
func (r *Report) Modules() map[string]*Module {
	out := make(map[string]*Module, len(r.modules))
	for kind, m := range r.modules {
		out[kind.Key()] = m
	}
	return out
}

// Has reports whether the module kind was present in the file.
func (r *Report) Has(kind ModuleKind) bool {
	_, ok := r.modules[kind]
	return ok
}

// Len returns the number of recognized modules in the report.
func (r *Report) Len() int {
	return len(r.modules)
}

// Module returns the module of the given kind, or ErrMissingModule.
func (r *Report) Module(kind ModuleKind) (*Module, error) {
	m, ok := r.modules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingModule, kind.Key())
	}
	return m, nil
}

// Get returns the module with the given attribute key, or ErrMissingModule.
func (r *Report) Get(key string) (*Module, error) {
	kind, ok := LookupKey(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingModule, key)
	}
	return r.Module(kind)
}

// ByStatus returns the names of modules with the given status, in the
// order they first appeared in the file.
func (r *Report) ByStatus(status Status) []string {
	names := make([]string, 0)
	for _, kind := range r.order {
		if m := r.modules[kind]; m.Status == status {
			names = append(names, m.Name)
		}
	}
	return names
}

// Passes returns the names of modules that passed.
func (r *Report) Passes() []string { return r.ByStatus(StatusPass) }

// Warns returns the names of modules with a warning.
func (r *Report) Warns() []string { return r.ByStatus(StatusWarn) }

// Fails returns the names of modules that failed.
func (r *Report) Fails() []string { return r.ByStatus(StatusFail) }

// PassesNum returns how many modules passed.
func (r *Report) PassesNum() int { return len(r.Passes()) }

// WarnsNum returns how many modules have a warning.
func (r *Report) WarnsNum() int { return len(r.Warns()) }

// FailsNum returns how many modules failed.
func (r *Report) FailsNum() int { return len(r.Fails()) }

// StatusCounts returns the number of modules per status.
func (r *Report) StatusCounts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, m := range r.modules {
		counts[m.Status]++
	}
	return counts
}

// BasicStatistics returns the Basic Statistics module.
func (r *Report) BasicStatistics() (*Module, error) { return r.Module(BasicStatistics) }

// PerBaseSequenceQuality returns the Per base sequence quality module.
func (r *Report) PerBaseSequenceQuality() (*Module, error) { return r.Module(PerBaseSequenceQuality) }

// PerSequenceQualityScores returns the Per sequence quality scores module.
func (r *Report) PerSequenceQualityScores() (*Module, error) {
	return r.Module(PerSequenceQualityScores)
}

// PerBaseSequenceContent returns the Per base sequence content module.
func (r *Report) PerBaseSequenceContent() (*Module, error) { return r.Module(PerBaseSequenceContent) }

// PerBaseGCContent returns the Per base GC content module.
func (r *Report) PerBaseGCContent() (*Module, error) { return r.Module(PerBaseGCContent) }

// PerSequenceGCContent returns the Per sequence GC content module.
func (r *Report) PerSequenceGCContent() (*Module, error) { return r.Module(PerSequenceGCContent) }

// PerBaseNContent returns the Per base N content module.
func (r *Report) PerBaseNContent() (*Module, error) { return r.Module(PerBaseNContent) }

// SequenceLengthDistribution returns the Sequence Length Distribution module.
func (r *Report) SequenceLengthDistribution() (*Module, error) {
	return r.Module(SequenceLengthDistribution)
}

// SequenceDuplicationLevels returns the Sequence Duplication Levels module.
func (r *Report) SequenceDuplicationLevels() (*Module, error) {
	return r.Module(SequenceDuplicationLevels)
}

// OverrepresentedSequences returns the Overrepresented sequences module.
func (r *Report) OverrepresentedSequences() (*Module, error) {
	return r.Module(OverrepresentedSequences)
}

// KmerContent returns the Kmer content module.
func (r *Report) KmerContent() (*Module, error) { return r.Module(KmerContent) }

// reportView is the serialized shape of a Report.
type reportView struct {
	Path    string             `yaml:"path,omitempty" json:"path,omitempty"`
	Version string             `yaml:"version,omitempty" json:"version,omitempty"`
	Passes  []string           `yaml:"passes" json:"passes"`
	Warns   []string           `yaml:"warns" json:"warns"`
	Fails   []string           `yaml:"fails" json:"fails"`
	Modules map[string]*Module `yaml:"modules" json:"modules"`
}

func (r *Report) view() reportView {
	return reportView{
		Path:    r.Path,
		Version: r.Version,
		Passes:  r.Passes(),
		Warns:   r.Warns(),
		Fails:   r.Fails(),
		Modules: r.Modules(),
	}
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// MarshalYAML implements yaml.Marshaler.
func (r *Report) MarshalYAML() (interface{}, error) {
	return r.view(), nil
}
