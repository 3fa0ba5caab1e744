package summary

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField is matched by every MissingFieldError.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidValue is matched by every InvalidValueError.
	ErrInvalidValue = errors.New("invalid field value")

	// ErrDecode is matched by every DecodeError.
	ErrDecode = errors.New("invalid summary document")
)

// MissingFieldError is returned when a required path is absent.
type MissingFieldError struct {
	Path []string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", strings.Join(e.Path, "."))
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// InvalidValueError is returned when a present field cannot be read as the
// requested type.
type InvalidValueError struct {
	Path  []string
	Value any
	Want  string
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("field %q: cannot read %#v as %s", strings.Join(e.Path, "."), e.Value, e.Want)
}

// Is reports whether target is ErrInvalidValue.
func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// DecodeError is returned when the summary document is not a JSON object.
type DecodeError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("decode summary %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("decode summary: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
