// Package literal extracts literal byte sequences from compiled automata.
//
// The search layer uses them two ways: a set of complete literals (the whole
// language of a pattern like foo|bar|baz) is matched directly by a
// multi-literal matcher, and a set of prefixes that every match starts with
// drives a prefilter that skips start positions no match can begin at.
//
// Key concepts:
//   - A Literal is a concrete byte sequence that may appear in matches
//   - A Seq is a set of alternative literals in the order the backtracker
//     would try them
//   - Minimize and LongestCommonPrefix shrink a Seq for prefiltering
package literal

import (
	"bytes"
	"slices"
)

// Literal is a byte sequence extracted from an automaton. Complete is true
// when matching the bytes is the whole match: no capture group, assertion
// or further input is involved.
//
// Example:
//   - Pattern /hello/ → Literal{[]byte("hello"), true}
//   - Pattern /hello\d+/ → Literal{[]byte("hello"), false}
type Literal struct {
	// Bytes contains the UTF-8 encoded literal.
	Bytes []byte

	// Complete indicates whether this literal represents the entire match.
	Complete bool
}

// NewLiteral creates a new Literal from the given byte sequence and completeness flag.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{
		Bytes:    b,
		Complete: complete,
	}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a string representation of the literal for debugging purposes.
// Format: "literal{bytes, complete=true/false}"
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Bytes) + ", complete=" + complete + "}"
}

// Seq is an ordered set of alternative literals. The order is the
// backtracker's preference order, which decides the winner when two
// literals match at the same position.
type Seq struct {
	literals []Literal
}

// NewSeq creates a new sequence from the given literals.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("hello"), true),
//	    literal.NewLiteral([]byte("world"), true),
//	)
//	fmt.Println(seq.Len()) // Output: 2
func NewSeq(lits ...Literal) *Seq {
	return &Seq{
		literals: lits,
	}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at the specified index.
// Panics if index is out of bounds.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// IsEmpty returns true if the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// AllComplete reports whether every literal is complete, so the sequence
// describes the full language of the pattern.
func (s *Seq) AllComplete() bool {
	if s.IsEmpty() {
		return false
	}
	for _, lit := range s.literals {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// IsPrefixFree reports whether no literal is a prefix of another (duplicates
// count as prefixes). In a prefix-free set at most one literal can match at
// any position, so every leftmost matching strategy agrees.
func (s *Seq) IsPrefixFree() bool {
	for i, a := range s.literals {
		for j, b := range s.literals {
			if i != j && isPrefix(a.Bytes, b.Bytes) {
				return false
			}
		}
	}
	return true
}

// IsInfixFree reports whether no literal occurs inside another (duplicates
// count). A scanner that stops at the earliest match end then always reports
// the leftmost match start.
func (s *Seq) IsInfixFree() bool {
	for i, a := range s.literals {
		for j, b := range s.literals {
			if i != j && bytes.Contains(b.Bytes, a.Bytes) {
				return false
			}
		}
	}
	return true
}

// MinLen returns the length of the shortest literal, or 0 for an empty
// sequence.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	n := len(s.literals[0].Bytes)
	for _, lit := range s.literals[1:] {
		n = min(n, len(lit.Bytes))
	}
	return n
}

// Clone returns a deep copy of the sequence.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return nil
	}
	cloned := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		cloned[i] = Literal{Bytes: bytes.Clone(lit.Bytes), Complete: lit.Complete}
	}
	return &Seq{literals: cloned}
}

// Minimize removes literals that are redundant for prefix matching: when
// S is a prefix of L, every position where L occurs is already a candidate
// through S. Completeness is cleared on the survivors because the minimized
// set no longer describes the language. Duplicates are removed as well.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo"), true),
//	    literal.NewLiteral([]byte("foobar"), true),
//	)
//	seq.Minimize()
//	fmt.Println(seq.Len()) // Output: 1 (only "foo" remains)
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}

	slices.SortStableFunc(s.literals, func(a, b Literal) int {
		return len(a.Bytes) - len(b.Bytes)
	})

	kept := make([]Literal, 0, len(s.literals))
	for _, current := range s.literals {
		redundant := false
		for _, k := range kept {
			if isPrefix(k.Bytes, current.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			current.Complete = false
			kept = append(kept, current)
		}
	}
	s.literals = kept
}

// LongestCommonPrefix returns the longest common prefix of all literals in the sequence.
// If the sequence is empty or has no common prefix, returns an empty slice.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("hello"), true),
//	    literal.NewLiteral([]byte("help"), true),
//	    literal.NewLiteral([]byte("hero"), true),
//	)
//	prefix := seq.LongestCommonPrefix()
//	fmt.Println(string(prefix)) // Output: he
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return []byte{}
	}

	prefix := s.literals[0].Bytes
	for i := 1; i < len(s.literals); i++ {
		prefix = commonPrefix(prefix, s.literals[i].Bytes)
		if len(prefix) == 0 {
			return []byte{}
		}
	}
	return bytes.Clone(prefix)
}

// isPrefix returns true if prefix is a prefix of s.
func isPrefix(prefix, s []byte) bool {
	return bytes.HasPrefix(s, prefix)
}

// commonPrefix returns the longest common prefix of a and b.
func commonPrefix(a, b []byte) []byte {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
