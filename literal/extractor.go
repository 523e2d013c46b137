package literal

import (
	"unicode/utf8"

	"github.com/coregx/ecmare/internal/ucd"
	"github.com/coregx/ecmare/nfa"
)

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from alternations like (a|b|c|d|...)
//   - MaxLiteralLen: prevents extracting very long literals that hurt cache locality
//   - MaxClassSize: prevents expanding large character classes like [a-z]
type ExtractorConfig struct {
	// MaxLiterals limits the number of literals. Extraction gives up when
	// the alternatives exceed it. Default: 64.
	MaxLiterals int

	// MaxLiteralLen truncates longer literals, which then become
	// incomplete. Default: 64.
	MaxLiteralLen int

	// MaxClassSize limits the size of character classes (and case fold
	// sets) to expand. Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// maxSteps bounds the states visited by one extraction. Chains of empty
// groups and epsilons would otherwise make the walk quadratic.
const maxSteps = 1 << 14

// Extractor extracts literal sequences from compiled automata.
//
// The walk starts at the anchored entry of the NFA and follows successors
// in the order the backtracker tries them, appending the UTF-8 bytes of
// every character state to the current prefix. Branches fork the prefix.
// Any state whose effect is not a fixed character (loops, counters,
// assertions, back-references, lookarounds) ends the literal there.
//
// Example:
//
//	n := nfa.MustCompile(`(?:foo|bar)\d`, 0)
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(n)
//	// prefixes = ["foo", "bar"], both incomplete
type Extractor struct {
	config ExtractorConfig
}

// New creates a new Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// ExtractPrefixes returns literals such that every match of n begins with
// one of them. A literal is complete when reaching Accept right after it is
// the only way to match, with no capture group in between.
//
// Returns nil when some match may begin with an arbitrary character (or
// with nothing at all), or when the limits are exceeded.
func (e *Extractor) ExtractPrefixes(n *nfa.NFA) *Seq {
	w := &walker{
		n:        n,
		config:   e.config,
		budget:   maxSteps,
		foldCase: n.FoldCase(),
	}
	if !w.walk(n.ContinuousEntry(), nil, true) || len(w.out) == 0 {
		return nil
	}
	return NewSeq(w.out...)
}

type walker struct {
	n        *nfa.NFA
	config   ExtractorConfig
	budget   int
	foldCase bool
	out      []Literal
}

// emit records prefix as one alternative. An empty prefix means the match
// can start anywhere, which makes the whole sequence useless.
func (w *walker) emit(prefix []byte, complete bool) bool {
	if len(prefix) == 0 || len(w.out) >= w.config.MaxLiterals {
		return false
	}
	w.out = append(w.out, NewLiteral(prefix, complete))
	return true
}

// follow continues the walk at to unless the edge goes backwards, which is
// how every loop of the automaton closes.
func (w *walker) follow(from, to nfa.StateID, prefix []byte, exact bool) bool {
	if to == nfa.InvalidState {
		return true
	}
	if to <= from {
		return w.emit(prefix, false)
	}
	return w.walk(to, prefix, exact)
}

// walk extends prefix from state id and reports false when extraction must
// be abandoned.
func (w *walker) walk(id nfa.StateID, prefix []byte, exact bool) bool {
	w.budget--
	if w.budget < 0 {
		return false
	}
	if len(prefix) >= w.config.MaxLiteralLen {
		return w.emit(prefix[:w.config.MaxLiteralLen], false)
	}

	st := w.n.State(id)
	switch st.Kind() {
	case nfa.StateChar:
		runes := []rune{st.Rune()}
		if w.foldCase {
			runes = ucd.FoldSet(st.Rune())
		}
		return w.chars(id, st, runes, prefix, exact)

	case nfa.StateClass:
		set := w.n.Classes().Set(st.Class())
		if set.Count() > w.config.MaxClassSize {
			return w.emit(prefix, false)
		}
		var runes []rune
		for _, r := range set.Ranges() {
			for c := r.Lo; c <= r.Hi; c++ {
				runes = append(runes, c)
			}
		}
		return w.chars(id, st, runes, prefix, exact)

	case nfa.StateEpsilon:
		return w.follow(id, st.Next1(), prefix, exact) &&
			w.follow(id, st.Next2(), prefix, exact)

	case nfa.StateGroupOpen, nfa.StateGroupClose:
		if !w.follow(id, st.Next1(), prefix, false) {
			return false
		}
		// A close only branches when its empty-iteration exit leads
		// elsewhere; otherwise the prefix would be emitted twice.
		if st.Kind() == nfa.StateGroupClose && st.Next2() != st.Next1() {
			return w.follow(id, st.Next2(), prefix, false)
		}
		return true

	case nfa.StateAccept:
		return w.emit(prefix, exact)

	default:
		return w.emit(prefix, false)
	}
}

// chars forks prefix once per rune a character state accepts. A state with
// an alternative successor is taken on mismatch, so that path keeps the
// prefix unchanged.
func (w *walker) chars(id nfa.StateID, st *nfa.State, runes []rune, prefix []byte, exact bool) bool {
	if st.Next1() == id || len(runes) == 0 || len(runes) > w.config.MaxClassSize {
		return w.emit(prefix, false)
	}
	for _, r := range runes {
		if r == utf8.RuneError {
			// Invalid input decodes to U+FFFD without containing its bytes.
			return w.emit(prefix, false)
		}
		ext := utf8.AppendRune(prefix[:len(prefix):len(prefix)], r)
		if !w.follow(id, st.Next1(), ext, exact) {
			return false
		}
	}
	return w.follow(id, st.Next2(), prefix, exact)
}
