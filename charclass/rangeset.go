// Package charclass implements code point range sets and the registry of
// character classes referenced by compiled automata.
//
// A RangeSet is an ordered list of disjoint, non-adjacent inclusive ranges
// over 0..0x10FFFF. Mutating methods (Add, AddRune, Merge) keep that form;
// the remaining operations are pure and return new sets.
package charclass

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/coregx/ecmare/internal/ucd"
)

// MaxRune is the largest code point a set can hold.
const MaxRune = ucd.MaxRune

// Range is an inclusive code point range [Lo, Hi].
type Range struct {
	Lo, Hi rune
}

// Relation describes how two sets relate to each other.
type Relation uint8

const (
	// Same means both sets hold exactly the same code points.
	Same Relation = iota
	// Overlapping means the sets differ but share at least one code point.
	Overlapping
	// Disjoint means the sets share no code point.
	Disjoint
)

// String returns the relation name.
func (r Relation) String() string {
	switch r {
	case Same:
		return "Same"
	case Overlapping:
		return "Overlapping"
	case Disjoint:
		return "Disjoint"
	default:
		return fmt.Sprintf("Relation(%d)", r)
	}
}

// RangeSet is a set of code points. The zero value is the empty set.
type RangeSet struct {
	ranges []Range
}

// NewRangeSet returns a set holding the given ranges. Reversed ranges are
// swapped.
func NewRangeSet(ranges ...Range) RangeSet {
	var s RangeSet
	for _, r := range ranges {
		s.Add(r.Lo, r.Hi)
	}
	return s
}

// RuneSet returns the set {r}.
func RuneSet(r rune) RangeSet {
	return RangeSet{ranges: []Range{{r, r}}}
}

func fromUCD(rs []ucd.Range) RangeSet {
	out := make([]Range, len(rs))
	for i, r := range rs {
		out[i] = Range{r.Lo, r.Hi}
	}
	return RangeSet{ranges: out}
}

// Add joins [lo, hi] into the set, coalescing it with every overlapping or
// adjacent range.
func (s *RangeSet) Add(lo, hi rune) {
	if lo > hi {
		lo, hi = hi, lo
	}
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Hi >= lo-1 })
	j := i
	for j < len(s.ranges) && s.ranges[j].Lo <= hi+1 {
		lo = min(lo, s.ranges[j].Lo)
		hi = max(hi, s.ranges[j].Hi)
		j++
	}
	s.ranges = slices.Replace(s.ranges, i, j, Range{lo, hi})
}

// AddRune joins a single code point into the set.
func (s *RangeSet) AddRune(r rune) {
	s.Add(r, r)
}

// Merge joins every range of o into s.
func (s *RangeSet) Merge(o RangeSet) {
	for _, r := range o.ranges {
		s.Add(r.Lo, r.Hi)
	}
}

// Clone returns an independent copy of s.
func (s RangeSet) Clone() RangeSet {
	return RangeSet{ranges: slices.Clone(s.ranges)}
}

// Ranges returns the ranges of s in ascending order. The slice must not be
// modified.
func (s RangeSet) Ranges() []Range {
	return s.ranges
}

// Len returns the number of ranges.
func (s RangeSet) Len() int {
	return len(s.ranges)
}

// IsEmpty reports whether s holds no code point.
func (s RangeSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Count returns the number of code points in s.
func (s RangeSet) Count() int {
	n := 0
	for _, r := range s.ranges {
		n += int(r.Hi-r.Lo) + 1
	}
	return n
}

// Contains reports whether c is a member of s.
func (s RangeSet) Contains(c rune) bool {
	return contains(s.ranges, c)
}

func contains(ranges []Range, c rune) bool {
	lo, hi := 0, len(ranges)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch r := ranges[mid]; {
		case c < r.Lo:
			hi = mid
		case c > r.Hi:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// Equal reports whether s and o hold the same code points.
func (s RangeSet) Equal(o RangeSet) bool {
	return slices.Equal(s.ranges, o.ranges)
}

// Negate returns the complement of s within 0..MaxRune.
func (s RangeSet) Negate() RangeSet {
	out := make([]Range, 0, len(s.ranges)+1)
	next := rune(0)
	for _, r := range s.ranges {
		if r.Lo > next {
			out = append(out, Range{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= MaxRune {
		out = append(out, Range{next, MaxRune})
	}
	return RangeSet{ranges: out}
}

// Intersect returns the code points held by both s and o.
func (s RangeSet) Intersect(o RangeSet) RangeSet {
	var out []Range
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		if lo, hi := max(a.Lo, b.Lo), min(a.Hi, b.Hi); lo <= hi {
			out = append(out, Range{lo, hi})
		}
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	return RangeSet{ranges: out}
}

// Split partitions s by o: kept holds the members of s outside o, removed
// holds the members of s inside o.
func (s RangeSet) Split(o RangeSet) (kept, removed RangeSet) {
	return s.Intersect(o.Negate()), s.Intersect(o)
}

// Overlaps reports whether s and o share at least one code point.
func (s RangeSet) Overlaps(o RangeSet) bool {
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		if a.Lo <= b.Hi && b.Lo <= a.Hi {
			return true
		}
		if a.Hi < b.Hi {
			i++
		} else {
			j++
		}
	}
	return false
}

// Relation classifies s against o.
func (s RangeSet) Relation(o RangeSet) Relation {
	switch {
	case s.Equal(o):
		return Same
	case s.Overlaps(o):
		return Overlapping
	default:
		return Disjoint
	}
}

// CaseUnfold returns s extended with the full case-fold equivalence set of
// every member.
func (s RangeSet) CaseUnfold() RangeSet {
	out := s.Clone()
	for _, r := range s.ranges {
		for _, c := range ucd.FoldablesIn(r.Lo, r.Hi) {
			for _, m := range ucd.FoldSet(c) {
				out.AddRune(m)
			}
		}
	}
	return out
}

// SingleRune returns the one code point s consists of. With foldCase, a set
// that is exactly one case-fold equivalence set also qualifies and its
// canonical fold is returned.
func (s RangeSet) SingleRune(foldCase bool) (rune, bool) {
	n := s.Count()
	if n == 1 {
		return s.ranges[0].Lo, true
	}
	if !foldCase || n == 0 || n > 4 {
		return 0, false
	}
	f := ucd.Fold(s.ranges[0].Lo)
	if ucd.FoldSetSize(f) != n {
		return 0, false
	}
	for _, r := range s.ranges {
		for c := r.Lo; c <= r.Hi; c++ {
			if ucd.Fold(c) != f {
				return 0, false
			}
		}
	}
	return f, true
}

// String renders s in class syntax, e.g. [a-z\u{3b1}].
func (s RangeSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range s.ranges {
		writeRune(&b, r.Lo)
		if r.Hi != r.Lo {
			b.WriteByte('-')
			writeRune(&b, r.Hi)
		}
	}
	b.WriteByte(']')
	return b.String()
}

func writeRune(b *strings.Builder, r rune) {
	if r > 0x20 && r < 0x7F && !strings.ContainsRune(`\]-^[`, r) {
		b.WriteRune(r)
		return
	}
	fmt.Fprintf(b, `\u{%x}`, r)
}

// key is a compact identity of the set used for deduplication.
func (s RangeSet) key() string {
	var b strings.Builder
	b.Grow(len(s.ranges) * 8)
	for _, r := range s.ranges {
		fmt.Fprintf(&b, "%x-%x,", r.Lo, r.Hi)
	}
	return b.String()
}
