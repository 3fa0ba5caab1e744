// Package output provides formatters for different output formats.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/biopet/gentrap-report/internal/gentrap"
	"gopkg.in/yaml.v3"
)

// Formatter is the interface for formatting model output in different formats.
type Formatter interface {
	// Format formats a value according to the specified density level.
	// Returns the formatted string or an error.
	Format(v interface{}, density Density) (string, error)

	// FormatToWriter writes formatted output directly to a writer.
	FormatToWriter(w io.Writer, v interface{}, density Density) error
}

// YAMLFormatter formats values as YAML output.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats a value as YAML.
func (f *YAMLFormatter) Format(v interface{}, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes YAML output to a writer.
func (f *YAMLFormatter) FormatToWriter(w io.Writer, v interface{}, density Density) error {
	filtered := applyDensityFilter(v, density)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(filtered)
}

// JSONFormatter formats values as JSON output.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats a value as JSON.
func (f *JSONFormatter) Format(v interface{}, density Density) (string, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v, density); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatToWriter writes JSON output to a writer.
func (f *JSONFormatter) FormatToWriter(w io.Writer, v interface{}, density Density) error {
	filtered := applyDensityFilter(v, density)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(filtered)
}

// applyDensityFilter replaces a *gentrap.Run with its RunOutput at the given
// density. Other values are formatted as-is.
func applyDensityFilter(v interface{}, density Density) interface{} {
	if run, ok := v.(*gentrap.Run); ok {
		if !ValidateDensity(density) {
			density = DefaultDensity
		}
		return NewRunOutput(run, density)
	}
	return v
}

// GetFormatter returns a formatter for the specified format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
