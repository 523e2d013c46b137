package meta

import (
	"math"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/sys/cpu"

	"github.com/coregx/ecmare/nfa"
	"github.com/coregx/ecmare/prefilter"
)

// Engine runs searches for one compiled pattern.
//
// The Engine:
//  1. Compiles the pattern into a backtracking NFA
//  2. Extracts prefix literals and builds the accelerators
//  3. Selects a strategy (BMH, literal set, prefilter, backtrack)
//  4. Verifies candidates with the backtracker
//
// Thread safety: the NFA, the backtracker and the accelerators are
// immutable. Per-search mutable state comes from a sync.Pool, so multiple
// goroutines can search with the same Engine concurrently.
//
// Example:
//
//	engine, err := meta.Compile(`(?<word>\w+)@example\.com`, 0)
//	if err != nil {
//	    return err
//	}
//	match := engine.Find([]byte("mail bob@example.com"))
//	if match != nil {
//	    println(match.String()) // "bob@example.com"
//	}
type Engine struct {
	stats stats

	nfa         *nfa.NFA
	backtracker *nfa.Backtracker
	bmh         *prefilter.BMH
	literalSet  *prefilter.LiteralSet
	prefilter   prefilter.Prefilter
	strategy    Strategy
	config      Config

	statePool *searchStatePool
}

// Stats is a snapshot of an Engine's execution counters.
type Stats struct {
	// Searches counts calls to Search and the methods built on it.
	Searches uint64

	// BMHSearches counts searches answered by the BMH literal search.
	BMHSearches uint64

	// LiteralSetSearches counts searches answered by the Aho-Corasick set.
	LiteralSetSearches uint64

	// BacktrackRuns counts backtracker invocations.
	BacktrackRuns uint64

	// PrefilterCandidates counts candidate positions reported by the prefilter.
	PrefilterCandidates uint64

	// PrefilterAbandoned counts searches that gave up on the prefilter
	// because too few candidates matched.
	PrefilterAbandoned uint64

	// ComplexityAborts counts searches that ran out of failure budget.
	ComplexityAborts uint64
}

// stats is updated concurrently by every search. The pads keep the hot
// counters off the cache lines of the read-mostly Engine fields.
type stats struct {
	_                   cpu.CacheLinePad
	searches            atomic.Uint64
	bmhSearches         atomic.Uint64
	literalSetSearches  atomic.Uint64
	backtrackRuns       atomic.Uint64
	prefilterCandidates atomic.Uint64
	prefilterAbandoned  atomic.Uint64
	complexityAborts    atomic.Uint64
	_                   cpu.CacheLinePad
}

// Compile compiles pattern with the default configuration.
func Compile(pattern string, flags nfa.Flags) (*Engine, error) {
	return CompileWithConfig(pattern, flags, DefaultConfig())
}

// CompileWithConfig compiles pattern with a custom configuration.
func CompileWithConfig(pattern string, flags nfa.Flags, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	compiler := nfa.NewCompiler(nfa.CompilerConfig{
		Flags:           flags,
		MaxNestingDepth: config.MaxNestingDepth,
	})
	n, err := compiler.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return NewEngine(n, config)
}

// NewEngine builds an Engine for an already compiled NFA.
func NewEngine(n *nfa.NFA, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	maxFailures := config.MaxFailures
	if maxFailures > math.MaxInt {
		maxFailures = math.MaxInt
	}

	bt := nfa.NewBacktracker(n, int(maxFailures))
	bt.SetMaxStack(config.MaxStack)

	acc := selectStrategy(n, config)
	e := &Engine{
		nfa:         n,
		backtracker: bt,
		bmh:         acc.bmh,
		literalSet:  acc.literalSet,
		prefilter:   acc.prefilter,
		strategy:    acc.strategy,
		config:      config,
	}
	e.statePool = newSearchStatePool(n, acc.prefilter, config.Tracker)
	return e, nil
}

// NFA returns the compiled automaton.
func (e *Engine) NFA() *nfa.NFA {
	return e.nfa
}

// Strategy returns the execution strategy selected for this engine.
//
// Example:
//
//	strategy := engine.Strategy()
//	println(strategy.String()) // "UseBMH"
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Prefilter returns the candidate finder, or nil.
func (e *Engine) Prefilter() prefilter.Prefilter {
	return e.prefilter
}

// NumGroups returns the number of groups, group 0 included.
func (e *Engine) NumGroups() int {
	return e.nfa.NumGroups()
}

// GroupNames returns the group names indexed by group number. Index 0 and
// unnamed groups map to "".
func (e *Engine) GroupNames() []string {
	return e.nfa.GroupNames()
}

// Stats returns execution statistics.
//
// Example:
//
//	stats := engine.Stats()
//	println("backtracker runs:", stats.BacktrackRuns)
func (e *Engine) Stats() Stats {
	return Stats{
		Searches:            e.stats.searches.Load(),
		BMHSearches:         e.stats.bmhSearches.Load(),
		LiteralSetSearches:  e.stats.literalSetSearches.Load(),
		BacktrackRuns:       e.stats.backtrackRuns.Load(),
		PrefilterCandidates: e.stats.prefilterCandidates.Load(),
		PrefilterAbandoned:  e.stats.prefilterAbandoned.Load(),
		ComplexityAborts:    e.stats.complexityAborts.Load(),
	}
}

// ResetStats resets execution statistics to zero.
func (e *Engine) ResetStats() {
	e.stats.searches.Store(0)
	e.stats.bmhSearches.Store(0)
	e.stats.literalSetSearches.Store(0)
	e.stats.backtrackRuns.Store(0)
	e.stats.prefilterCandidates.Store(0)
	e.stats.prefilterAbandoned.Store(0)
	e.stats.complexityAborts.Store(0)
}

// Find returns the leftmost match in haystack, or nil. A search that runs
// out of failure budget reports no match.
func (e *Engine) Find(haystack []byte) *Match {
	return e.FindAt(haystack, 0)
}

// FindAt returns the leftmost match starting at or after at. Assertions
// and lookbehinds may inspect the whole haystack.
func (e *Engine) FindAt(haystack []byte, at int) *Match {
	m, _ := e.Search(haystack, at, 0, 0)
	return m
}

// IsMatch reports whether haystack contains a match.
func (e *Engine) IsMatch(haystack []byte) bool {
	return e.Find(haystack) != nil
}

// Search looks for the leftmost match in haystack starting at byte offset
// start. Lookbehinds, ^ and \b may look back down to lookbehindLimit.
// Returns (nil, nil) when there is no match and an error wrapping
// nfa.ErrComplexity when an attempt exceeds the failure budget, or
// nfa.ErrStack when it exceeds the frame limit.
func (e *Engine) Search(haystack []byte, start, lookbehindLimit int, flags nfa.MatchFlags) (*Match, error) {
	e.stats.searches.Add(1)
	if start < 0 || start > len(haystack) {
		return nil, nil
	}

	// The literal strategies answer only searches free to match anywhere.
	if flags&(nfa.Continuous|nfa.MatchAtEnd) == 0 {
		switch e.strategy {
		case UseBMH:
			e.stats.bmhSearches.Add(1)
			s, end := e.bmh.FindMatch(haystack, start)
			if s < 0 {
				return nil, nil
			}
			return e.literalMatch(s, end, haystack), nil
		case UseLiteralSet:
			e.stats.literalSetSearches.Add(1)
			s, end := e.literalSet.FindMatch(haystack, start)
			if s < 0 {
				return nil, nil
			}
			return e.literalMatch(s, end, haystack), nil
		}
	}

	state := e.statePool.get()
	defer e.statePool.put(state)

	if state.tracker != nil && flags&nfa.Continuous == 0 {
		return e.searchCandidates(state, haystack, start, lookbehindLimit, flags)
	}
	return e.backtrack(state, haystack, start, lookbehindLimit, flags)
}

// searchCandidates verifies prefilter candidates one at a time with
// continuous backtracker attempts. A candidate starts at an ASCII or UTF-8
// lead byte, which is always a decode boundary.
func (e *Engine) searchCandidates(state *SearchState, haystack []byte, start, lookbehindLimit int, flags nfa.MatchFlags) (*Match, error) {
	tracker := state.tracker
	literalLen := 0
	if flags&nfa.MatchAtEnd == 0 {
		literalLen = e.prefilter.LiteralLen()
	}

	pos := start
	for pos < len(haystack) {
		if !tracker.IsActive() {
			e.stats.prefilterAbandoned.Add(1)
			return e.backtrack(state, haystack, pos, lookbehindLimit, flags)
		}
		cand := tracker.Find(haystack, pos)
		if cand < 0 {
			return nil, nil
		}
		e.stats.prefilterCandidates.Add(1)

		if literalLen > 0 {
			tracker.ConfirmMatch()
			return e.literalMatch(cand, cand+literalLen, haystack), nil
		}

		e.stats.backtrackRuns.Add(1)
		found, err := e.backtracker.Search(state.backtracker, haystack, cand, lookbehindLimit, flags|nfa.Continuous)
		if err != nil {
			e.stats.complexityAborts.Add(1)
			return nil, err
		}
		if found {
			tracker.ConfirmMatch()
			return e.captures(state, haystack), nil
		}
		_, w := utf8.DecodeRune(haystack[cand:])
		pos = cand + w
	}
	return nil, nil
}

func (e *Engine) backtrack(state *SearchState, haystack []byte, start, lookbehindLimit int, flags nfa.MatchFlags) (*Match, error) {
	e.stats.backtrackRuns.Add(1)
	found, err := e.backtracker.Search(state.backtracker, haystack, start, lookbehindLimit, flags)
	if err != nil {
		e.stats.complexityAborts.Add(1)
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return e.captures(state, haystack), nil
}

func (e *Engine) captures(state *SearchState, haystack []byte) *Match {
	spans := state.backtracker.AppendCaptures(make([]int, 0, 2*e.nfa.NumGroups()))
	return newMatchWithSpans(spans, haystack)
}

// literalMatch builds a match for an accelerator hit. Literal patterns
// have no capture groups besides group 0, which keeps the layout the
// backtracker would produce.
func (e *Engine) literalMatch(start, end int, haystack []byte) *Match {
	spans := make([]int, 2*e.nfa.NumGroups())
	for i := range spans {
		spans[i] = -1
	}
	spans[0], spans[1] = start, end
	return newMatchWithSpans(spans, haystack)
}
