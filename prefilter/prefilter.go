// Package prefilter provides fast candidate filtering for regex search.
//
// A prefilter finds positions in the subject where a match might start so
// the backtracker only runs there. Candidates come from literal prefixes
// extracted from the automaton or, failing that, from the set of bytes a
// match can start with:
//   - Single byte → memchr
//   - Single substring, or a long common prefix → memmem
//   - Several literals → Aho-Corasick automaton
//   - Up to three lead bytes → memchr2/memchr3
//   - A small lead byte set → table scan
//
// A prefilter whose candidates are themselves matches is complete, and the
// search layer can return its spans without verification. The BMH searcher
// for pure literal patterns is always complete.
//
// Example usage:
//
//	n := nfa.MustCompile(`(?:hello|world)\d+`, 0)
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(n)
//	pf := prefilter.NewBuilder(prefixes, n.FirstBytes()).Build()
//	pos := pf.Find([]byte("foo hello1 bar"), 0)
//	// pos == 4
package prefilter

import (
	"github.com/coregx/ecmare/literal"
	"github.com/coregx/ecmare/nfa"
	"github.com/coregx/ecmare/simd"
)

// Prefilter is used to quickly find candidate match positions before running
// the full regex engine.
type Prefilter interface {
	// Find returns the index of the first candidate at or after start, or
	// -1. A candidate does not guarantee a match unless IsComplete is true.
	Find(haystack []byte, start int) int

	// IsComplete returns true if a prefilter match guarantees a full regex
	// match.
	IsComplete() bool

	// LiteralLen returns the length of every complete match, or 0 when the
	// prefilter is incomplete or its matches vary in length.
	LiteralLen() int

	// HeapBytes returns the number of bytes of heap memory used by this prefilter.
	HeapBytes() int
}

// MatchFinder is implemented by prefilters that report the matched range
// directly.
type MatchFinder interface {
	// FindMatch returns the span of the first match at or after start, or
	// (-1, -1). The matched bytes are haystack[start2:end].
	FindMatch(haystack []byte, start int) (start2, end int)
}

// maxByteSetSize is the largest lead byte set worth a table scan. Larger
// sets reject too few positions to pay for leaving the backtracker's own
// first byte check.
const maxByteSetSize = 32

// Builder constructs the optimal prefilter from extracted literals.
//
// Selection strategy (in order of preference):
//  1. Prefix literals (see the package documentation)
//  2. The lead bytes of the first characters
//  3. No suitable input → nil (no prefilter)
type Builder struct {
	prefixes   *literal.Seq
	firstBytes *nfa.FirstByteSet
}

// NewBuilder creates a builder from the prefix literals every match starts
// with and the set of possible first bytes. Either may be nil.
func NewBuilder(prefixes *literal.Seq, firstBytes *nfa.FirstByteSet) *Builder {
	return &Builder{
		prefixes:   prefixes,
		firstBytes: firstBytes,
	}
}

// Build constructs the best prefilter for the given literals.
//
// Returns nil if no effective prefilter can be built.
func (b *Builder) Build() Prefilter {
	if !b.prefixes.IsEmpty() {
		if pf := fromLiterals(b.prefixes); pf != nil {
			return pf
		}
	}
	if b.firstBytes != nil && b.firstBytes.IsUseful() && b.firstBytes.Count() > 0 {
		return fromByteSet(b.firstBytes.Bytes())
	}
	return nil
}

// fromLiterals selects a prefilter for a prefix sequence.
func fromLiterals(seq *literal.Seq) Prefilter {
	if seq.Len() == 1 {
		lit := seq.Get(0)
		return fromSubstring(lit.Bytes, lit.Complete)
	}

	minimized := seq.Clone()
	minimized.Minimize()
	if minimized.Len() == 1 {
		return fromSubstring(minimized.Get(0).Bytes, false)
	}
	if lcp := minimized.LongestCommonPrefix(); len(lcp) >= 3 {
		return newMemmemPrefilter(lcp, false)
	}

	if minimized.MinLen() >= 2 {
		if set, err := NewLiteralSet(minimized); err == nil {
			return set
		}
	}

	var lead []byte
	seen := [256]bool{}
	for i := 0; i < minimized.Len(); i++ {
		b := minimized.Get(i).Bytes[0]
		if !seen[b] {
			seen[b] = true
			lead = append(lead, b)
		}
	}
	return fromByteSet(lead)
}

func fromSubstring(needle []byte, complete bool) Prefilter {
	if len(needle) == 1 {
		return newMemchrPrefilter(needle[0], complete)
	}
	return newMemmemPrefilter(needle, complete)
}

// fromByteSet scans for any byte of set, or returns nil when the set is too
// large to filter well.
func fromByteSet(set []byte) Prefilter {
	switch len(set) {
	case 0:
		return nil
	case 1:
		return newMemchrPrefilter(set[0], false)
	case 2:
		return &memchr2Prefilter{set[0], set[1]}
	case 3:
		return &memchr3Prefilter{set[0], set[1], set[2]}
	}
	if len(set) > maxByteSetSize {
		return nil
	}
	p := &byteSetPrefilter{}
	for _, b := range set {
		p.table[b] = true
	}
	return p
}

// memchrPrefilter wraps simd.Memchr as a Prefilter.
//
// Example patterns:
//
//	/a\d+/        → search for 'a'
//	/[é]/         → search for the lead byte 0xC3
type memchrPrefilter struct {
	needle   byte
	complete bool
}

func newMemchrPrefilter(needle byte, complete bool) Prefilter {
	return &memchrPrefilter{
		needle:   needle,
		complete: complete,
	}
}

// Find implements Prefilter.Find using simd.Memchr.
func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := simd.Memchr(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memchrPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *memchrPrefilter) LiteralLen() int {
	if p.complete {
		return 1
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchrPrefilter) HeapBytes() int {
	return 0
}

// memmemPrefilter wraps simd.Memmem as a Prefilter.
//
// Example patterns:
//
//	/hello\w*/    → search for "hello"
//	/foo|foobar/  → after minimization → search for "foo"
type memmemPrefilter struct {
	needle   []byte
	complete bool
}

// newMemmemPrefilter copies needle so the caller may reuse its buffer.
func newMemmemPrefilter(needle []byte, complete bool) Prefilter {
	return &memmemPrefilter{
		needle:   append([]byte(nil), needle...),
		complete: complete,
	}
}

// Find implements Prefilter.Find using simd.Memmem.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := simd.Memmem(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memmemPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *memmemPrefilter) LiteralLen() int {
	if p.complete {
		return len(p.needle)
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memmemPrefilter) HeapBytes() int {
	return len(p.needle)
}

// memchr2Prefilter finds either of two lead bytes.
type memchr2Prefilter struct {
	b1, b2 byte
}

func (p *memchr2Prefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	if idx := simd.Memchr2(haystack[start:], p.b1, p.b2); idx >= 0 {
		return start + idx
	}
	return -1
}

func (p *memchr2Prefilter) IsComplete() bool { return false }
func (p *memchr2Prefilter) LiteralLen() int  { return 0 }
func (p *memchr2Prefilter) HeapBytes() int   { return 0 }

// memchr3Prefilter finds any of three lead bytes.
type memchr3Prefilter struct {
	b1, b2, b3 byte
}

func (p *memchr3Prefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	if idx := simd.Memchr3(haystack[start:], p.b1, p.b2, p.b3); idx >= 0 {
		return start + idx
	}
	return -1
}

func (p *memchr3Prefilter) IsComplete() bool { return false }
func (p *memchr3Prefilter) LiteralLen() int  { return 0 }
func (p *memchr3Prefilter) HeapBytes() int   { return 0 }

// byteSetPrefilter finds any byte of a small set with a table scan.
type byteSetPrefilter struct {
	table [256]bool
}

func (p *byteSetPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	if idx := simd.MemchrInTable(haystack[start:], &p.table); idx >= 0 {
		return start + idx
	}
	return -1
}

func (p *byteSetPrefilter) IsComplete() bool { return false }
func (p *byteSetPrefilter) LiteralLen() int  { return 0 }
func (p *byteSetPrefilter) HeapBytes() int   { return 0 }
