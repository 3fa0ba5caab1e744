package gentrap

import (
	"fmt"
	"math"

	"github.com/biopet/gentrap-report/internal/summary"
)

// RNAMetrics holds the raw RNA metrics of a sample or library merged with the
// ratios derived from them. Picard names these ratios pct_ although they are
// fractions between 0 and 1.
type RNAMetrics map[string]any

// Float returns the metric at key as a float64.
func (m RNAMetrics) Float(key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	f, err := summary.AsFloat(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// baseRatios maps a derived key to the raw field divided by pf_bases.
var baseRatios = []struct{ key, field string }{
	{"pct_aligned_bases_all", "pf_aligned_bases"},
	{"pct_coding_bases_all", "coding_bases"},
	{"pct_utr_bases_all", "utr_bases"},
	{"pct_intronic_bases_all", "intronic_bases"},
	{"pct_intergenic_bases_all", "intergenic_bases"},
}

// DeriveRNAMetrics merges the derived ratios into a copy of stats. An empty
// stats fragment yields nil metrics. pf_bases is required.
func DeriveRNAMetrics(stats summary.Fragment, policy ZeroDivisionPolicy) (RNAMetrics, error) {
	if stats.Empty() {
		return nil, nil
	}

	pfBases, err := stats.Float("pf_bases")
	if err != nil {
		return nil, err
	}
	coding, err := stats.IntOr("coding_bases", 0)
	if err != nil {
		return nil, err
	}
	utr, err := stats.IntOr("utr_bases", 0)
	if err != nil {
		return nil, err
	}
	pfAligned, err := stats.FloatOr("pf_aligned_bases", 0)
	if err != nil {
		return nil, err
	}

	m := RNAMetrics(stats.Raw())
	exonic := coding + utr
	m["exonic_bases"] = exonic
	m["pct_aligned_bases"] = 1.0

	set := func(key string, num, den float64) error {
		if den == 0 {
			if policy == ZeroDivisionError {
				return fmt.Errorf("%s: %s: %w", stats.Path(), key, ErrZeroDivision)
			}
			return nil
		}
		r := num / den
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%s: %s: non-finite ratio %v/%v", stats.Path(), key, num, den)
		}
		m[key] = r
		return nil
	}

	if err := set("pct_exonic_bases_all", float64(exonic), pfBases); err != nil {
		return nil, err
	}
	if err := set("pct_exonic_bases", float64(exonic), pfAligned); err != nil {
		return nil, err
	}
	for _, r := range baseRatios {
		v, err := stats.FloatOr(r.field, 0)
		if err != nil {
			return nil, err
		}
		if err := set(r.key, v, pfBases); err != nil {
			return nil, err
		}
	}

	// ribosomal_bases only gates the ratio; its value is not used
	if stats.HasNonEmpty("ribosomal_bases") {
		ribo, err := stats.FloatOr("pf_ribosomal_bases", 0)
		if err != nil {
			return nil, err
		}
		if err := set("pct_ribosomal_bases_all", ribo, pfBases); err != nil {
			return nil, err
		}
	}
	return m, nil
}
