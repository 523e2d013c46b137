// Package nfa compiles ECMAScript regular expressions into a backtracking
// automaton and executes it.
//
// Compile parses a pattern, lowers it into a flat array of states linked by
// two successors each, runs a set of language-preserving rewrites over the
// array and freezes it into an immutable *NFA. A Backtracker runs an NFA over
// UTF-8 input with leftmost-first (Perl/ECMAScript) semantics, including
// capture groups, backreferences, and variable-width lookbehind.
package nfa

import (
	"fmt"
)

// ErrorKind classifies compile and search errors. Every kind is itself an
// error, so callers can test with errors.Is(err, nfa.ErrorParen).
type ErrorKind uint8

const (
	// ErrorCollate is reserved: collating elements are not supported syntax.
	ErrorCollate ErrorKind = iota + 1
	// ErrorCtype is reserved for invalid character class names.
	ErrorCtype
	// ErrorEscape reports an invalid escape sequence.
	ErrorEscape
	// ErrorBackref reports a backreference to a missing group or a
	// duplicated group name.
	ErrorBackref
	// ErrorBrack reports an unterminated character class.
	ErrorBrack
	// ErrorParen reports unbalanced parentheses or an unknown (? group.
	ErrorParen
	// ErrorBrace reports a malformed {m,n} quantifier.
	ErrorBrace
	// ErrorBadBrace reports a {m,n} quantifier with m > n.
	ErrorBadBrace
	// ErrorRange reports a reversed range such as [z-a].
	ErrorRange
	// ErrorSpace reports that the pattern exceeds compile-time limits.
	ErrorSpace
	// ErrorBadRepeat reports a quantifier with nothing to repeat.
	ErrorBadRepeat
	// ErrorComplexity reports that a search exceeded its failure budget.
	ErrorComplexity
	// ErrorStack reports that a match attempt ran out of backtracking
	// frames.
	ErrorStack
	// ErrorUTF8 reports a pattern that is not valid UTF-8.
	ErrorUTF8
	// ErrorProperty reports an unknown \p{...} name or value.
	ErrorProperty
	// ErrorInternal reports a broken internal invariant.
	ErrorInternal
)

var kindText = map[ErrorKind]string{
	ErrorCollate:    "invalid collating element",
	ErrorCtype:      "invalid character class name",
	ErrorEscape:     "invalid escape sequence",
	ErrorBackref:    "invalid backreference",
	ErrorBrack:      "missing closing ]",
	ErrorParen:      "unbalanced parentheses",
	ErrorBrace:      "invalid quantifier braces",
	ErrorBadBrace:   "invalid quantifier range",
	ErrorRange:      "invalid character class range",
	ErrorSpace:      "pattern too large",
	ErrorBadRepeat:  "nothing to repeat",
	ErrorComplexity: "search exceeded complexity limit",
	ErrorStack:      "backtrack stack exhausted",
	ErrorUTF8:       "invalid UTF-8",
	ErrorProperty:   "unknown Unicode property",
	ErrorInternal:   "internal error",
}

// Error implements the error interface.
func (k ErrorKind) Error() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("regex error %d", uint8(k))
}

// String returns the error text of the kind.
func (k ErrorKind) String() string {
	return k.Error()
}

// ErrComplexity is returned by searches whose failure budget ran out. The
// automaton stays usable.
var ErrComplexity error = ErrorComplexity

// ErrStack is returned by searches that exceeded the backtracking frame
// limit. The automaton stays usable.
var ErrStack error = ErrorStack

// Error describes a failure tied to a pattern.
type Error struct {
	Kind    ErrorKind
	Pattern string
	// Offset is the code point offset in Pattern where the problem was
	// detected, or -1 when it does not apply.
	Offset int
	// Detail optionally narrows the problem down.
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("regex %q: %s at offset %d", e.Pattern, msg, e.Offset)
	}
	return fmt.Sprintf("regex %q: %s", e.Pattern, msg)
}

// Unwrap returns the error kind, so errors.Is matches kinds.
func (e *Error) Unwrap() error {
	return e.Kind
}
