package summary

import (
	"sort"
	"strings"
)

// SortNatural sorts names in natural order: runs of ASCII digits compare by
// integer value and everything else compares case-insensitively, so
// "Sample1" < "sample2" < "sample10". Names that compare equal under those
// rules fall back to plain byte order to keep the result deterministic.
func SortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return NaturalLess(names[i], names[j])
	})
}

// NaturalLess reports whether a sorts before b in natural order.
func NaturalLess(a, b string) bool {
	if c := naturalCompare(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

func naturalCompare(a, b string) int {
	ka, kb := naturalKey(a), naturalKey(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		var c int
		if i%2 == 0 {
			c = strings.Compare(strings.ToLower(ka[i]), strings.ToLower(kb[i]))
		} else {
			c = compareDigits(ka[i], kb[i])
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	default:
		return 0
	}
}

// naturalKey splits s into alternating text and digit runs. Even indexes
// hold text (possibly empty), odd indexes hold digits.
func naturalKey(s string) []string {
	key := make([]string, 0, 4)
	start := 0
	inDigits := false
	for i := 0; i < len(s); i++ {
		d := s[i] >= '0' && s[i] <= '9'
		if d != inDigits {
			key = append(key, s[start:i])
			start = i
			inDigits = d
		}
	}
	key = append(key, s[start:])
	if inDigits {
		key = append(key, "")
	}
	return key
}

// compareDigits compares two digit runs by integer value without overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
