package meta

import (
	"github.com/coregx/ecmare/literal"
	"github.com/coregx/ecmare/nfa"
	"github.com/coregx/ecmare/prefilter"
)

// Strategy represents the way an Engine finds the leftmost match.
//
// Strategy selection is automatic and never changes results: an accelerated
// strategy reports the span the backtracker would report, and falls back to
// the backtracker for searches it cannot answer (continuous searches and
// searches that must end at the subject end).
type Strategy int

const (
	// UseBacktrack runs the backtracker at every start position, skipping
	// positions whose byte cannot start a match.
	UseBacktrack Strategy = iota

	// UseBMH finds the pattern literal with Boyer-Moore-Horspool.
	// Selected for:
	//   - Patterns that are a literal of two or more code points
	//   - Case-insensitive literals (searched by fold sets)
	UseBMH

	// UseLiteralSet finds matches with an Aho-Corasick automaton.
	// Selected for:
	//   - Alternations of literals without groups or assertions
	//   - Sets where no literal occurs inside another
	UseLiteralSet

	// UsePrefilter finds candidate start positions with a prefilter and
	// verifies each one with the backtracker.
	// Selected for:
	//   - Patterns with literal prefixes (foo\d+, (?:get|post)/\w+)
	//   - Patterns whose first byte comes from a small set ([xy]\d)
	UsePrefilter
)

// String returns a human-readable representation of the Strategy.
func (s Strategy) String() string {
	switch s {
	case UseBacktrack:
		return "UseBacktrack"
	case UseBMH:
		return "UseBMH"
	case UseLiteralSet:
		return "UseLiteralSet"
	case UsePrefilter:
		return "UsePrefilter"
	default:
		return "Unknown"
	}
}

// accelerators is what selectStrategy builds for a pattern.
type accelerators struct {
	strategy   Strategy
	bmh        *prefilter.BMH
	literalSet *prefilter.LiteralSet
	prefilter  prefilter.Prefilter
}

// selectStrategy picks the strategy for n and builds its accelerators.
//
// Order of preference:
//  1. BMH for a pure literal
//  2. Literal set when the prefix literals describe every match
//  3. Prefilter from prefix literals or first bytes
//  4. Plain backtracking
//
// A prefilter is built whenever possible, even for BMH and the literal set,
// because searches those strategies cannot answer still benefit from it.
func selectStrategy(n *nfa.NFA, config Config) accelerators {
	var acc accelerators

	var prefixes *literal.Seq
	if config.EnablePrefilter || config.EnableLiteralSet {
		extractor := literal.New(literal.ExtractorConfig{
			MaxLiterals:   config.MaxLiterals,
			MaxLiteralLen: literal.DefaultConfig().MaxLiteralLen,
			MaxClassSize:  literal.DefaultConfig().MaxClassSize,
		})
		prefixes = extractor.ExtractPrefixes(n)
	}

	if config.EnablePrefilter {
		// With a rewinder in front, first bytes describe the follow set of the
		// leading loop, not match starts, so they cannot seed an anchored
		// verification.
		fb := n.FirstBytes()
		if n.Entry() != n.ContinuousEntry() {
			fb = nil
		}
		acc.prefilter = prefilter.NewBuilder(prefixes, fb).Build()
	}

	if config.EnableBMH && n.Literal() != nil {
		if bmh, ok := prefilter.NewBMH(n.Literal(), n.FoldCase()); ok {
			acc.strategy = UseBMH
			acc.bmh = bmh
			return acc
		}
	}

	if config.EnableLiteralSet && prefixes.Len() > 1 && prefixes.AllComplete() && prefixes.IsInfixFree() {
		if set, err := prefilter.NewLiteralSet(prefixes); err == nil && set.IsComplete() {
			acc.strategy = UseLiteralSet
			acc.literalSet = set
			return acc
		}
	}

	if acc.prefilter != nil {
		acc.strategy = UsePrefilter
		return acc
	}

	acc.strategy = UseBacktrack
	return acc
}
