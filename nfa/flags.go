package nfa

import "strings"

// Flags are compile-time options.
type Flags uint16

const (
	// FlagIgnoreCase matches letters case-insensitively using simple case
	// folding (the i flag).
	FlagIgnoreCase Flags = 1 << iota
	// FlagMultiline lets ^ and $ match at line terminators (the m flag).
	FlagMultiline
	// FlagDotAll lets . match line terminators (the s flag).
	FlagDotAll
	// FlagOptimize is accepted for compatibility. The compiler always
	// applies its rewrites.
	FlagOptimize
	// FlagNoSubs compiles every capturing group as non-capturing.
	FlagNoSubs
)

// String renders the flags in the /.../ suffix form, e.g. "ims".
func (f Flags) String() string {
	var b strings.Builder
	if f&FlagIgnoreCase != 0 {
		b.WriteByte('i')
	}
	if f&FlagMultiline != 0 {
		b.WriteByte('m')
	}
	if f&FlagDotAll != 0 {
		b.WriteByte('s')
	}
	if f&FlagNoSubs != 0 {
		b.WriteByte('n')
	}
	return b.String()
}

// MatchFlags adjust a single search.
type MatchFlags uint16

const (
	// NotBOL: the lookbehind limit is not a beginning of line.
	NotBOL MatchFlags = 1 << iota
	// NotEOL: the subject end is not an end of line.
	NotEOL
	// NotBOW: the lookbehind limit is not a beginning of word.
	NotBOW
	// NotEOW: the subject end is not an end of word.
	NotEOW
	// PrevAvail: the code point before the lookbehind limit exists and is
	// consulted by ^ and \b.
	PrevAvail
	// NotNull rejects empty matches.
	NotNull
	// Continuous anchors the match at the search start.
	Continuous
	// MatchAtEnd requires the match to end at the subject end.
	MatchAtEnd
)
