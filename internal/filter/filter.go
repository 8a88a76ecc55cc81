// Package filter holds the directory filter predicates. Every predicate is
// pure: criteria fields left empty (or zero for numeric minimums) add no
// constraint, active criteria are combined with AND, and input order is kept.
package filter

import (
	"math"
	"strconv"
	"strings"
)

// Range is an inclusive numeric interval parsed from a "min-max" or "N+" token.
type Range struct {
	Min float64
	Max float64
}

// empty matches no value.
var empty = Range{Min: math.Inf(1), Max: math.Inf(-1)}

// ParseRange parses a range token. It reports false for an empty token. A
// token with a non-numeric bound yields a range that matches nothing.
//
//	"1000-5000" -> [1000, 5000]
//	"10000+"    -> [10000, +Inf)
//	"-500"      -> [0, 500]
//	"200-"      -> [200, +Inf)
func ParseRange(token string) (Range, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Range{}, false
	}

	if strings.HasSuffix(token, "+") {
		lo, ok := parseBound(strings.TrimSuffix(token, "+"), 0)
		if !ok {
			return empty, true
		}
		return Range{Min: lo, Max: math.Inf(1)}, true
	}

	loText, hiText, found := strings.Cut(token, "-")
	if !found {
		// A bare number is treated as a lower bound.
		hiText = ""
	}
	lo, okLo := parseBound(loText, 0)
	hi, okHi := parseBound(hiText, math.Inf(1))
	if !okLo || !okHi {
		return empty, true
	}
	return Range{Min: lo, Max: hi}, true
}

// parseBound returns fallback for an empty side and false for one that is
// not a finite number.
func parseBound(s string, fallback float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Contains reports whether v lies within the range. Unknown or malformed
// values never match.
func (r Range) Contains(v *float64) bool {
	if v == nil || math.IsNaN(*v) {
		return false
	}
	return *v >= r.Min && *v <= r.Max
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// matchesSearch reports whether the lowercased query is a substring of any field.
func matchesSearch(query string, fields ...string) bool {
	for _, f := range fields {
		if containsFold(f, query) {
			return true
		}
	}
	return false
}

// overlaps is the bidirectional substring match used for service types and
// specializations.
func overlaps(value, criterion string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return false
	}
	return strings.Contains(v, criterion) || strings.Contains(criterion, v)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func formatFloat(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func intAsFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func valueOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}
