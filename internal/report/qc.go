package report

import (
	"github.com/biopet/gentrap-report/internal/fastqc"
	"github.com/biopet/gentrap-report/internal/gentrap"
)

// QCReportData is the FastQC overview of a run: for every library, the
// module statuses of each FastQC report it registered.
type QCReportData struct {
	// Report contains the common report header fields (type, generated_at, etc.).
	Report ReportHeader `yaml:"report" json:"report"`

	// Libraries lists one entry per library in run order.
	Libraries []LibraryQC `yaml:"libraries" json:"libraries"`

	// Totals counts the nodes and statuses across the run.
	Totals Totals `yaml:"totals" json:"totals"`
}

// LibraryQC holds the FastQC results of one library.
type LibraryQC struct {
	Sample  string     `yaml:"sample" json:"sample"`
	Library string     `yaml:"library" json:"library"`
	Reports []ReportQC `yaml:"reports" json:"reports"`
}

// ReportQC summarizes one FastQC report.
type ReportQC struct {
	Role    string   `yaml:"role" json:"role"`
	Path    string   `yaml:"path" json:"path"`
	Version string   `yaml:"version" json:"version"`
	Passes  []string `yaml:"passes" json:"passes"`
	Warns   []string `yaml:"warns" json:"warns"`
	Fails   []string `yaml:"fails" json:"fails"`
}

// ModuleFailure names one failing module.
type ModuleFailure struct {
	Sample  string `yaml:"sample" json:"sample"`
	Library string `yaml:"library" json:"library"`
	Role    string `yaml:"role" json:"role"`
	Module  string `yaml:"module" json:"module"`
}

// NewQCReport builds the FastQC overview of run.
// The report type is set to ReportTypeQC and generated_at is set to now.
func NewQCReport(run *gentrap.Run) *QCReportData {
	data := &QCReportData{
		Report:    newHeader(ReportTypeQC, run.SummaryFile, run.Version),
		Libraries: make([]LibraryQC, 0, len(run.Libs)),
		Totals:    CountTotals(run),
	}
	for _, lib := range run.Libs {
		data.Libraries = append(data.Libraries, NewLibraryQC(lib))
	}
	return data
}

// NewLibraryQC summarizes the FastQC reports of lib in role order.
func NewLibraryQC(lib *gentrap.Library) LibraryQC {
	out := LibraryQC{
		Sample:  lib.Sample.Name,
		Library: lib.Name,
		Reports: []ReportQC{},
	}
	for _, role := range gentrap.Roles() {
		r, ok := lib.Report(role)
		if !ok {
			continue
		}
		out.Reports = append(out.Reports, newReportQC(string(role), r))
	}
	return out
}

func newReportQC(role string, r *fastqc.Report) ReportQC {
	return ReportQC{
		Role:    role,
		Path:    r.Path,
		Version: r.Version,
		Passes:  nonNil(r.Passes()),
		Warns:   nonNil(r.Warns()),
		Fails:   nonNil(r.Fails()),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Failures lists every failing module in run order.
func (q *QCReportData) Failures() []ModuleFailure {
	var out []ModuleFailure
	for _, lib := range q.Libraries {
		for _, r := range lib.Reports {
			for _, name := range r.Fails {
				out = append(out, ModuleFailure{
					Sample:  lib.Sample,
					Library: lib.Library,
					Role:    r.Role,
					Module:  name,
				})
			}
		}
	}
	return out
}

// FailureCount returns the number of failing modules.
func (q *QCReportData) FailureCount() int {
	return q.Totals.Fails
}

// Library returns the overview of one library.
func (q *QCReportData) Library(sample, library string) (LibraryQC, bool) {
	for _, lib := range q.Libraries {
		if lib.Sample == sample && lib.Library == library {
			return lib, true
		}
	}
	return LibraryQC{}, false
}
