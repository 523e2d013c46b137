package meta

import (
	"sync"

	"github.com/coregx/ecmare/nfa"
	"github.com/coregx/ecmare/prefilter"
)

// SearchState holds per-search mutable state for thread-safe concurrent searches.
// This struct should be obtained from a sync.Pool to enable safe concurrent usage
// of the same compiled Engine from multiple goroutines.
//
// Usage pattern:
//
//	state := engine.statePool.get()
//	defer engine.statePool.put(state)
//	// use state for search operations
//
// Thread safety: Each goroutine must use its own SearchState instance.
type SearchState struct {
	// backtracker holds the executor's stacks and capture spans.
	backtracker *nfa.SearchState

	// tracker measures the prefilter during one search. nil when the
	// engine has no prefilter.
	tracker *prefilter.Tracker
}

func newSearchState(n *nfa.NFA, pf prefilter.Prefilter, config prefilter.TrackerConfig) *SearchState {
	return &SearchState{
		backtracker: nfa.NewSearchState(n),
		tracker:     prefilter.NewTracker(pf, config),
	}
}

// reset prepares the SearchState for reuse.
// The executor resets its own state at the start of every search.
func (s *SearchState) reset() {
	if s.tracker != nil {
		s.tracker.Reset()
	}
}

// searchStatePool manages a pool of SearchState instances for thread-safe reuse.
// This follows the stdlib regexp pattern of using sync.Pool for concurrent safety.
type searchStatePool struct {
	pool sync.Pool
}

func newSearchStatePool(n *nfa.NFA, pf prefilter.Prefilter, config prefilter.TrackerConfig) *searchStatePool {
	p := &searchStatePool{}
	p.pool = sync.Pool{
		New: func() any {
			return newSearchState(n, pf, config)
		},
	}
	return p
}

// get retrieves a SearchState from the pool, creating one if necessary.
func (p *searchStatePool) get() *SearchState {
	return p.pool.Get().(*SearchState)
}

// put returns a SearchState to the pool for reuse.
func (p *searchStatePool) put(state *SearchState) {
	if state == nil {
		return
	}
	state.reset()
	p.pool.Put(state)
}
