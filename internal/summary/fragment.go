// Package summary reads pipeline summary documents.
//
// A summary is a deeply nested JSON object in which any section may be
// missing. Fragment walks it with get-or-empty semantics: descending into an
// absent key yields an absent (but usable) Fragment, so only the leaf
// lookups that are genuinely required can fail.
package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Fragment is a view of one JSON object inside a summary document.
// The zero value is an absent, empty fragment.
type Fragment struct {
	path   []string
	values map[string]any
}

// New wraps a decoded JSON object as a root fragment.
func New(values map[string]any) Fragment {
	return Fragment{values: values}
}

// Load reads and decodes a summary file.
func Load(path string) (Fragment, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fragment{}, fmt.Errorf("open summary: %w", err)
	}
	defer file.Close()

	root, err := Decode(file)
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) {
			derr.Path = path
		}
		return Fragment{}, err
	}
	return root, nil
}

// Decode reads a single JSON object from r. Numbers are kept exact: integers
// decode to int64 and everything else to float64.
func Decode(r io.Reader) (Fragment, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Fragment{}, &DecodeError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return Fragment{}, &DecodeError{Err: errors.New("unexpected data after top-level object")}
	}

	values, ok := normalize(doc).(map[string]any)
	if !ok {
		return Fragment{}, &DecodeError{Err: fmt.Errorf("top-level value is %T, want object", doc)}
	}
	return New(values), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return v
	}
}

func (f Fragment) child(key string) []string {
	path := make([]string, len(f.path)+1)
	copy(path, f.path)
	path[len(f.path)] = key
	return path
}

// Path returns the dotted location of the fragment in its document.
func (f Fragment) Path() string {
	return strings.Join(f.path, ".")
}

// Present reports whether the fragment exists in the document.
// A present fragment may still be empty.
func (f Fragment) Present() bool {
	return f.values != nil
}

// Empty reports whether the fragment has no keys, absent or not.
func (f Fragment) Empty() bool {
	return len(f.values) == 0
}

// Has reports whether key is present, even with a null value.
func (f Fragment) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// HasNonEmpty reports whether key is present with a value other than the
// empty string.
func (f Fragment) HasNonEmpty(key string) bool {
	v, ok := f.values[key]
	if !ok {
		return false
	}
	s, isString := v.(string)
	return !isString || s != ""
}

// Value returns the raw value stored at key.
func (f Fragment) Value(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Section descends into key. Absent keys and non-object values yield an
// absent fragment.
func (f Fragment) Section(key string) Fragment {
	sub, _ := f.values[key].(map[string]any)
	return Fragment{path: f.child(key), values: sub}
}

// Dig descends through keys, one Section per key.
func (f Fragment) Dig(keys ...string) Fragment {
	for _, key := range keys {
		f = f.Section(key)
	}
	return f
}

// OptionalSection descends into key. Absent and null values yield an absent
// fragment; any other non-object value is an InvalidValueError.
func (f Fragment) OptionalSection(key string) (Fragment, error) {
	v, ok := f.values[key]
	if !ok || v == nil {
		return Fragment{path: f.child(key)}, nil
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return Fragment{}, &InvalidValueError{Path: f.child(key), Value: v, Want: "object"}
	}
	return Fragment{path: f.child(key), values: sub}, nil
}

// RequireSection descends into key, which must hold an object.
func (f Fragment) RequireSection(key string) (Fragment, error) {
	v, ok := f.values[key]
	if !ok {
		return Fragment{}, &MissingFieldError{Path: f.child(key)}
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return Fragment{}, &InvalidValueError{Path: f.child(key), Value: v, Want: "object"}
	}
	return Fragment{path: f.child(key), values: sub}, nil
}

// Require returns the value at key, which must be present.
func (f Fragment) Require(key string) (any, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, &MissingFieldError{Path: f.child(key)}
	}
	return v, nil
}

// Float reads a required number. Numeric strings are accepted.
func (f Fragment) Float(key string) (float64, error) {
	v, err := f.Require(key)
	if err != nil {
		return 0, err
	}
	n, err := AsFloat(v)
	if err != nil {
		return 0, &InvalidValueError{Path: f.child(key), Value: v, Want: "number"}
	}
	return n, nil
}

// FloatOr reads an optional number, returning def when key is absent.
func (f Fragment) FloatOr(key string, def float64) (float64, error) {
	if !f.Has(key) {
		return def, nil
	}
	return f.Float(key)
}

// IntOr reads an optional integer, returning def when key is absent.
// Fractional numbers are truncated; fractional strings are rejected.
func (f Fragment) IntOr(key string, def int64) (int64, error) {
	v, ok := f.values[key]
	if !ok {
		return def, nil
	}
	n, err := AsInt(v)
	if err != nil {
		return 0, &InvalidValueError{Path: f.child(key), Value: v, Want: "integer"}
	}
	return n, nil
}

// Bool reads a required boolean. The strings accepted by strconv.ParseBool
// are also accepted.
func (f Fragment) Bool(key string) (bool, error) {
	v, err := f.Require(key)
	if err != nil {
		return false, err
	}
	b, err := AsBool(v)
	if err != nil {
		return false, &InvalidValueError{Path: f.child(key), Value: v, Want: "boolean"}
	}
	return b, nil
}

// String reads a required string.
func (f Fragment) String(key string) (string, error) {
	v, err := f.Require(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &InvalidValueError{Path: f.child(key), Value: v, Want: "string"}
	}
	return s, nil
}

// StringOr reads an optional string, returning def when key is absent or null.
// Non-string scalars are formatted.
func (f Fragment) StringOr(key, def string) string {
	v, ok := f.values[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Keys returns the fragment's keys in natural order.
func (f Fragment) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	SortNatural(keys)
	return keys
}

// Raw returns a shallow copy of the fragment's values. The result is never nil.
func (f Fragment) Raw() map[string]any {
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}
