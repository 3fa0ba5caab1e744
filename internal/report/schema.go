// Package report provides the envelope types handed to renderers and agents.
//
// The core model is a gentrap.Run. A report wraps it with the presentation
// values a renderer needs (logo, document path) and a header describing when
// and from which summary it was generated. Views such as the QC overview are
// derived from the Run and never modify it.
package report

import (
	"fmt"
	"strings"
	"time"
)

// ReportType represents the type of report being generated.
type ReportType string

const (
	// ReportTypeDocument is the full model wrapped for a template renderer.
	ReportTypeDocument ReportType = "document"

	// ReportTypeQC is the per-library FastQC status overview.
	ReportTypeQC ReportType = "qc"
)

// String returns the string representation of the report type.
func (rt ReportType) String() string {
	return string(rt)
}

// ParseReportType parses a string into a ReportType.
// Returns an error for invalid report type values.
func ParseReportType(s string) (ReportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document":
		return ReportTypeDocument, nil
	case "qc":
		return ReportTypeQC, nil
	default:
		return "", fmt.Errorf("invalid report type: %q (expected document or qc)", s)
	}
}

// ReportHeader contains the common header fields for all report types.
// This structure appears at the top of every report output.
type ReportHeader struct {
	// Type identifies the kind of report (document, qc).
	Type ReportType `yaml:"type" json:"type"`

	// GeneratedAt is the timestamp when the report was generated.
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`

	// SummaryFile is the pipeline summary the model was built from.
	SummaryFile string `yaml:"summary_file" json:"summary_file"`

	// PipelineVersion is the version recorded in the summary settings.
	PipelineVersion string `yaml:"pipeline_version" json:"pipeline_version"`
}

func newHeader(rt ReportType, summaryFile, version string) ReportHeader {
	return ReportHeader{
		Type:            rt,
		GeneratedAt:     time.Now(),
		SummaryFile:     summaryFile,
		PipelineVersion: version,
	}
}
