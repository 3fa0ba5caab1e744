// Package output provides YAML/JSON dumps of the gentrap model.
//
// # Output Types
//
// A *gentrap.Run handed to a Formatter is flattened into a RunOutput first:
//
//   - RunInfo: summary file, pipeline version, library type and counts
//   - ExecutableOutput: the curated executables in display order
//   - SampleOutput / LibraryOutput: the hierarchy in natural name order
//   - FastQCOutput: per-role FastQC status counts
//
// Any other value is encoded as-is, so reports from the report package can
// share the same formatters.
//
// # Format Types
//
//   - YAML (default): human-readable, map keys sorted
//   - JSON: machine-readable, same structure as YAML
//
// # Density Modes
//
//   - sparse: hierarchy, pairing and lib_type only
//   - medium: adds executables, metrics and FastQC status counts (default)
//   - dense: adds FastQC module tables, settings, file registries and
//     the flexiprep section of each library
package output
