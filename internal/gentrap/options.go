// Package gentrap assembles the run, sample and library model of a Gentrap
// pipeline summary.
//
// A Run is built once from a summary document and never mutated. Samples and
// libraries are sorted in natural order, optional stages of the pipeline
// simply leave their fields empty, and any required field that is missing
// aborts the whole build.
package gentrap

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrZeroDivision is wrapped by errors reported when a derived ratio has a
// zero denominator and the policy is ZeroDivisionError.
var ErrZeroDivision = errors.New("division by zero")

// ZeroDivisionPolicy decides what happens to a ratio whose denominator is zero.
type ZeroDivisionPolicy string

const (
	// ZeroDivisionOmit leaves the ratio out of the metrics.
	ZeroDivisionOmit ZeroDivisionPolicy = "omit"
	// ZeroDivisionError aborts the build.
	ZeroDivisionError ZeroDivisionPolicy = "error"
)

// ParseZeroDivisionPolicy parses a policy name. The empty string selects
// ZeroDivisionOmit.
func ParseZeroDivisionPolicy(s string) (ZeroDivisionPolicy, error) {
	switch ZeroDivisionPolicy(s) {
	case "", ZeroDivisionOmit:
		return ZeroDivisionOmit, nil
	case ZeroDivisionError:
		return ZeroDivisionError, nil
	default:
		return "", fmt.Errorf("unknown zero division policy %q (valid: omit, error)", s)
	}
}

// Options controls how a Run is built.
type Options struct {
	// Workers is the number of samples built concurrently. Values below 2
	// build sequentially.
	Workers int

	// ZeroDivision is the policy for ratios with a zero denominator.
	ZeroDivision ZeroDivisionPolicy

	// Logger receives debug traces of the build. Nil means no logging.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.ZeroDivision == "" {
		o.ZeroDivision = ZeroDivisionOmit
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
