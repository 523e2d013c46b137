// Package ucd provides the Unicode data the regex compiler needs: property
// and script code point ranges, simple case folding, and identifier classes
// for group names.
//
// All tables are derived from the standard library's unicode package, so the
// Unicode version follows the Go toolchain.
package ucd

import (
	"slices"
	"unicode"
)

// MaxRune is the largest valid Unicode code point.
const MaxRune = unicode.MaxRune

// Range is an inclusive code point range [Lo, Hi].
type Range struct {
	Lo, Hi rune
}

// fromTable flattens a unicode.RangeTable into sorted, coalesced ranges.
func fromTable(t *unicode.RangeTable) []Range {
	var out []Range
	for _, r := range t.R16 {
		out = appendStrided(out, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	for _, r := range t.R32 {
		out = appendStrided(out, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	return normalize(out)
}

func appendStrided(out []Range, lo, hi, stride rune) []Range {
	if stride == 1 {
		return append(out, Range{lo, hi})
	}
	for c := lo; c <= hi; c += stride {
		out = append(out, Range{c, c})
	}
	return out
}

// normalize sorts ranges and merges overlapping or adjacent ones.
func normalize(rs []Range) []Range {
	if len(rs) < 2 {
		return rs
	}
	slices.SortFunc(rs, func(a, b Range) int {
		if a.Lo != b.Lo {
			return int(a.Lo - b.Lo)
		}
		return int(a.Hi - b.Hi)
	})
	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func union(sets ...[]Range) []Range {
	var all []Range
	for _, s := range sets {
		all = append(all, s...)
	}
	return normalize(all)
}

func negate(rs []Range) []Range {
	var out []Range
	next := rune(0)
	for _, r := range rs {
		if r.Lo > next {
			out = append(out, Range{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= MaxRune {
		out = append(out, Range{next, MaxRune})
	}
	return out
}

// subtract returns a minus b. Both inputs must be normalized.
func subtract(a, b []Range) []Range {
	return intersect(a, negate(b))
}

func intersect(a, b []Range) []Range {
	var out []Range
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		lo := max(a[i].Lo, b[j].Lo)
		hi := min(a[i].Hi, b[j].Hi)
		if lo <= hi {
			out = append(out, Range{lo, hi})
		}
		if a[i].Hi < b[j].Hi {
			i++
		} else {
			j++
		}
	}
	return out
}

// Contains reports whether r lies in the sorted ranges rs.
func Contains(rs []Range, r rune) bool {
	_, found := slices.BinarySearchFunc(rs, r, func(x Range, t rune) int {
		switch {
		case x.Hi < t:
			return -1
		case x.Lo > t:
			return 1
		}
		return 0
	})
	return found
}
