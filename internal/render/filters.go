package render

import (
	"path/filepath"
	"text/template"

	"github.com/biopet/gentrap-report/internal/summary"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultValue is printed by the number filters for absent values.
const DefaultValue = "None"

// Filters formats numbers for templates with digit grouping of a fixed
// locale. Values that are nil or cannot be read as a number print the
// default value instead.
type Filters struct {
	printer *message.Printer
	def     string
}

// NewFilters returns filters grouping digits the way tag does.
func NewFilters(tag language.Tag, def string) *Filters {
	return &Filters{
		printer: message.NewPrinter(tag),
		def:     def,
	}
}

// NiceInt formats v as an integer. Floats are truncated; strings must hold
// an integer literal.
func (f *Filters) NiceInt(v any) string {
	if v == nil {
		return f.def
	}
	n, err := summary.AsInt(v)
	if err != nil {
		return f.def
	}
	return f.printer.Sprintf("%d", n)
}

// NiceFloat formats v with two decimals.
func (f *Filters) NiceFloat(v any) string {
	if v == nil {
		return f.def
	}
	x, err := summary.AsFloat(v)
	if err != nil {
		return f.def
	}
	return f.printer.Sprintf("%.2f", x)
}

// FloatToNicePct formats the fraction v as a percentage with two decimals,
// without a percent sign.
func (f *Filters) FloatToNicePct(v any) string {
	if v == nil {
		return f.def
	}
	x, err := summary.AsFloat(v)
	if err != nil {
		return f.def
	}
	return f.printer.Sprintf("%.2f", x*100.0)
}

// Basename returns the last element of path, or "" for an empty path.
func Basename(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// FuncMap returns the template functions.
func (f *Filters) FuncMap() template.FuncMap {
	return template.FuncMap{
		"nice_int":       f.NiceInt,
		"nice_flt":       f.NiceFloat,
		"float2nice_pct": f.FloatToNicePct,
		"basename":       Basename,
	}
}
