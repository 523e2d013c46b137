package prefilter

import (
	"errors"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/ecmare/literal"
)

var errOverlappingLiterals = errors.New("prefilter: a literal occurs inside another")

// LiteralSet finds any of several literals with an Aho-Corasick automaton.
//
// The automaton stops at the earliest match end, which is the leftmost
// match start only when no literal occurs inside another. When the literals
// are also all complete, the reported span is exactly the match the
// backtracker would find, so the set is complete.
type LiteralSet struct {
	auto     *ahocorasick.Automaton
	complete bool
	minLen   int
	size     int
}

// NewLiteralSet builds the automaton over the literals of seq, in order.
// seq must be infix-free.
func NewLiteralSet(seq *literal.Seq) (*LiteralSet, error) {
	if !seq.IsInfixFree() {
		return nil, errOverlappingLiterals
	}
	builder := ahocorasick.NewBuilder()
	size := 0
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		builder.AddPattern(lit.Bytes)
		size += len(lit.Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &LiteralSet{
		auto:     auto,
		complete: seq.AllComplete(),
		minLen:   seq.MinLen(),
		size:     size,
	}, nil
}

// FindMatch implements MatchFinder.
func (s *LiteralSet) FindMatch(haystack []byte, start int) (start2, end int) {
	if start < 0 || start+s.minLen > len(haystack) {
		return -1, -1
	}
	m := s.auto.Find(haystack, start)
	if m == nil {
		return -1, -1
	}
	return m.Start, m.End
}

// Find implements Prefilter.Find.
func (s *LiteralSet) Find(haystack []byte, start int) int {
	pos, _ := s.FindMatch(haystack, start)
	return pos
}

// IsMatch reports whether any literal occurs in haystack.
func (s *LiteralSet) IsMatch(haystack []byte) bool {
	return s.auto.IsMatch(haystack)
}

// IsComplete implements Prefilter.IsComplete.
func (s *LiteralSet) IsComplete() bool {
	return s.complete
}

// LiteralLen implements Prefilter.LiteralLen. Literal lengths vary.
func (s *LiteralSet) LiteralLen() int {
	return 0
}

// HeapBytes implements Prefilter.HeapBytes. The automaton's own tables are
// approximated by the total pattern length.
func (s *LiteralSet) HeapBytes() int {
	return s.size
}
