package report

import (
	"path/filepath"

	"github.com/biopet/gentrap-report/internal/gentrap"
)

// Document is the value handed to a template renderer.
// Templates reach the model through Run and use Logo and DocumentPath
// verbatim; neither is interpreted here.
type Document struct {
	// Report contains the common report header fields.
	Report ReportHeader `yaml:"report" json:"report"`

	// Run is the assembled pipeline run.
	Run *gentrap.Run `yaml:"run" json:"run"`

	// Logo is the logo file referenced by the template.
	Logo string `yaml:"logo" json:"logo"`

	// DocumentPath is the path of the template being rendered.
	DocumentPath string `yaml:"document_path" json:"document_path"`

	// Totals counts the nodes of Run.
	Totals Totals `yaml:"totals" json:"totals"`
}

// Totals counts samples, libraries and FastQC module statuses across a run.
type Totals struct {
	Samples       int `yaml:"samples" json:"samples"`
	Libraries     int `yaml:"libraries" json:"libraries"`
	FastQCReports int `yaml:"fastqc_reports" json:"fastqc_reports"`
	Passes        int `yaml:"passes" json:"passes"`
	Warns         int `yaml:"warns" json:"warns"`
	Fails         int `yaml:"fails" json:"fails"`
}

// NewDocument wraps run for rendering. The report type is set to
// ReportTypeDocument and generated_at is set to now.
func NewDocument(run *gentrap.Run, logo, documentPath string) *Document {
	return &Document{
		Report:       newHeader(ReportTypeDocument, run.SummaryFile, run.Version),
		Run:          run,
		Logo:         logo,
		DocumentPath: documentPath,
		Totals:       CountTotals(run),
	}
}

// CountTotals counts the nodes and FastQC statuses of run.
func CountTotals(run *gentrap.Run) Totals {
	t := Totals{
		Samples:   len(run.SampleNames),
		Libraries: len(run.Libs),
	}
	for _, lib := range run.Libs {
		for _, r := range lib.Reports() {
			t.FastQCReports++
			t.Passes += r.PassesNum()
			t.Warns += r.WarnsNum()
			t.Fails += r.FailsNum()
		}
	}
	return t
}

// LogoName returns the base name of the logo file.
func (d *Document) LogoName() string {
	if d.Logo == "" {
		return ""
	}
	return filepath.Base(d.Logo)
}

// TemplateDir returns the directory holding the rendered template.
func (d *Document) TemplateDir() string {
	return filepath.Dir(d.DocumentPath)
}
