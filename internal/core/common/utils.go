package common

import "strings"

// Clamp01 bounds a score to [0,1].
func Clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// CanonicalText is the normalization applied before exact-match comparison:
// surrounding whitespace is trimmed, nothing else. Comparison stays
// case-sensitive.
func CanonicalText(s string) string {
	return strings.TrimSpace(s)
}

// AppendDistinct appends v to list if it is non-empty and not already
// present. Input order is preserved.
func AppendDistinct(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
