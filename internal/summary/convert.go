package summary

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AsFloat converts a decoded JSON scalar to float64. Numeric strings are
// parsed; booleans and null are rejected.
func AsFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

// AsInt converts a decoded JSON scalar to int64. Floats are truncated toward
// zero; strings must hold an integer literal.
func AsInt(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("not a finite number: %v", t)
		}
		return int64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return AsInt(f)
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

// AsBool converts a decoded JSON scalar to bool.
func AsBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(t))
	default:
		return false, fmt.Errorf("not a boolean: %T", v)
	}
}
