package fastqc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when input ends inside a module.
	ErrUnexpectedEOF = errors.New("unexpected end of file in module")

	// ErrMissingEndMarker is returned when a module's last line is not the end marker.
	ErrMissingEndMarker = errors.New("module does not end with " + EndMarker)

	// ErrUnknownStatus is returned for a status token other than pass, warn or fail.
	ErrUnknownStatus = errors.New("unknown module status")

	// ErrMalformedRow is returned when a module row does not have the expected shape.
	ErrMalformedRow = errors.New("malformed module row")

	// ErrMissingModule is returned by Report accessors for a module absent from the file.
	ErrMissingModule = errors.New("missing module")
)

// ParseError is a structural error in a FastQC report, with location information.
type ParseError struct {
	Path   string // empty when parsing from a reader
	Line   int    // line of the module header
	Module string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Module != "" {
		return fmt.Sprintf("%s: module %q: %v", loc, e.Module, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
