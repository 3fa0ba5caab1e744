package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is the default self-documenting YAML output
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON output format
	FormatJSON Format = "json"
)

// ParseFormat parses a format string into a Format value.
// Accepts: "yaml", "json" (case-insensitive)
// Returns an error for invalid format values.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected yaml or json)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Density represents the level of detail in output.
//   - Sparse: names, pairing and library type only
//   - Medium: adds metrics and FastQC status counts (default)
//   - Dense: adds FastQC module tables and the raw summary sections
type Density string

const (
	// DensitySparse lists the run hierarchy without metrics
	DensitySparse Density = "sparse"

	// DensityMedium includes RNA and alignment metrics and FastQC statuses (default)
	DensityMedium Density = "medium"

	// DensityDense includes everything in medium plus FastQC module rows,
	// pipeline settings and file registries
	DensityDense Density = "dense"
)

// ParseDensity parses a density string into a Density value.
// Accepts: "sparse", "medium", "dense" (case-insensitive)
// Returns an error for invalid density values.
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse":
		return DensitySparse, nil
	case "medium":
		return DensityMedium, nil
	case "dense":
		return DensityDense, nil
	default:
		return "", fmt.Errorf("invalid density: %q (expected sparse, medium, or dense)", s)
	}
}

// String returns the string representation of the density.
func (d Density) String() string {
	return string(d)
}

// IncludesMetrics returns true if this density level includes metrics.
func (d Density) IncludesMetrics() bool {
	return d == DensityMedium || d == DensityDense
}

// IncludesModules returns true if this density level includes FastQC module rows.
func (d Density) IncludesModules() bool {
	return d == DensityDense
}

// IncludesRaw returns true if this density level includes raw summary sections.
func (d Density) IncludesRaw() bool {
	return d == DensityDense
}

// DefaultFormat is the default output format when none is specified.
const DefaultFormat = FormatYAML

// DefaultDensity is the default density level when none is specified.
const DefaultDensity = DensityMedium

// ValidateFormat checks if a format value is valid.
func ValidateFormat(f Format) bool {
	switch f {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// ValidateDensity checks if a density value is valid.
func ValidateDensity(d Density) bool {
	switch d {
	case DensitySparse, DensityMedium, DensityDense:
		return true
	default:
		return false
	}
}
