package nfa

import "unicode/utf8"

// frame is a backtracking point: on failure the search resumes at the
// state's alternative successor with the saved position.
type frame struct {
	state StateID
	pos   int
}

// capture is the span of one group. count is non-zero while the group
// holds a match.
type capture struct {
	open, close int
	count       int
}

var unsetCapture = capture{open: -1, close: -1}

// SearchState holds the mutable state of one search. It can be reused for
// any number of searches with the NFA it was created for, but must not be
// shared between goroutines.
type SearchState struct {
	subject []byte
	begin   int
	end     int
	lblim   int
	flags   MatchFlags

	// state and pos are the executing state and subject offset.
	state StateID
	pos   int
	// nextPos is where the next attempt starts. AdvanceOrigin moves it past
	// a leading loop.
	nextPos int
	// failures counts down the failure budget of the current attempt.
	failures int
	// maxStack caps len(bt) for the current search.
	maxStack int
	// depth is the lookaround nesting level; Accept inside a lookaround
	// returns to the lookaround instead of ending the search.
	depth int
	// btFloor is the lowest frame the current lookaround body may pop.
	btFloor int

	// bt is the backtracking stack. The other stacks hold values that
	// states restore when their frame is popped.
	bt           []frame
	captureStack []capture
	countStack   []int
	repeatStack  []int

	groups   []capture
	counters []int
	repeats  []int
}

// NewSearchState allocates a search state sized for n.
func NewSearchState(n *NFA) *SearchState {
	return &SearchState{
		bt:       make([]frame, 0, 64),
		groups:   make([]capture, n.numGroups),
		counters: make([]int, n.numCounters),
		repeats:  make([]int, n.numRepeats),
	}
}

// reset prepares s for a search of subject with n. Buffers are kept and
// truncated, so a reused state does not allocate once it has grown.
func (s *SearchState) reset(n *NFA, subject []byte, start, lblim int, flags MatchFlags) {
	s.subject = subject
	s.begin = start
	s.end = len(subject)
	s.lblim = lblim
	s.flags = flags
	s.depth = 0
	s.btFloor = 0
	s.bt = s.bt[:0]
	s.captureStack = s.captureStack[:0]
	s.countStack = s.countStack[:0]
	s.repeatStack = s.repeatStack[:0]

	if cap(s.groups) < n.numGroups {
		s.groups = make([]capture, n.numGroups)
	}
	s.groups = s.groups[:n.numGroups]
	for i := range s.groups {
		s.groups[i] = unsetCapture
	}
	s.counters = resize(s.counters, n.numCounters)
	s.repeats = resize(s.repeats, n.numRepeats)
}

// resize returns v with length n and every element zero, reusing its
// backing array when it is large enough.
func resize(v []int, n int) []int {
	if cap(v) < n {
		return make([]int, n)
	}
	v = v[:n]
	clear(v)
	return v
}

// NumGroups returns the number of groups, group 0 included.
func (s *SearchState) NumGroups() int {
	return len(s.groups)
}

// Group returns the byte span of group i after a successful search. ok is
// false for groups that did not participate in the match. Group 0 is the
// whole match.
func (s *SearchState) Group(i int) (start, end int, ok bool) {
	if i < 0 || i >= len(s.groups) {
		return -1, -1, false
	}
	g := s.groups[i]
	if i != 0 && g.count == 0 {
		return -1, -1, false
	}
	return g.open, g.close, true
}

// AppendCaptures appends start/end pairs for every group to dst, using -1
// for groups that did not participate.
func (s *SearchState) AppendCaptures(dst []int) []int {
	for i := range s.groups {
		start, end, _ := s.Group(i)
		dst = append(dst, start, end)
	}
	return dst
}

// push records a backtracking point: on failure the search resumes at the
// alternative successor of id at the current position. The frame limit is
// enforced by run, not here, to keep this on the fast path.
func (s *SearchState) push(id StateID) {
	s.bt = append(s.bt, frame{state: id, pos: s.pos})
}

// read decodes the code point after (or, in reverse, before) the current
// position.
func (s *SearchState) read(reverse bool) (rune, int, bool) {
	if !reverse {
		if s.pos >= s.end {
			return 0, 0, false
		}
		if c := s.subject[s.pos]; c < utf8.RuneSelf {
			return rune(c), 1, true
		}
		r, w := utf8.DecodeRune(s.subject[s.pos:s.end])
		return r, w, true
	}
	if s.pos <= s.lblim {
		return 0, 0, false
	}
	if c := s.subject[s.pos-1]; c < utf8.RuneSelf {
		return rune(c), 1, true
	}
	r, w := utf8.DecodeLastRune(s.subject[s.lblim:s.pos])
	return r, w, true
}

// prev decodes the code point before the current position for assertions,
// which may look past the lookbehind limit.
func (s *SearchState) prev() (rune, bool) {
	if s.pos <= 0 {
		return 0, false
	}
	r, _ := utf8.DecodeLastRune(s.subject[:s.pos])
	return r, true
}

// snapshot saves every group but 0, every counter and every repeat
// position before a lookaround.
func (s *SearchState) snapshot() {
	s.captureStack = append(s.captureStack, s.groups[1:]...)
	s.countStack = append(s.countStack, s.counters...)
	s.repeatStack = append(s.repeatStack, s.repeats...)
}

// restoreSnapshot undoes snapshot.
func (s *SearchState) restoreSnapshot() {
	k := len(s.repeatStack) - len(s.repeats)
	copy(s.repeats, s.repeatStack[k:])
	s.repeatStack = s.repeatStack[:k]

	k = len(s.countStack) - len(s.counters)
	copy(s.counters, s.countStack[k:])
	s.countStack = s.countStack[:k]

	k = len(s.captureStack) - (len(s.groups) - 1)
	copy(s.groups[1:], s.captureStack[k:])
	s.captureStack = s.captureStack[:k]
}

// backtrack pops frames until one resumes the search. It reports false when
// no frame above the current floor is left.
func (s *SearchState) backtrack(states []State) (bool, error) {
	for {
		s.failures--
		if s.failures <= 0 {
			return false, ErrComplexity
		}
		if len(s.bt) <= s.btFloor {
			return false, nil
		}
		f := s.bt[len(s.bt)-1]
		s.bt = s.bt[:len(s.bt)-1]
		st := &states[f.state]
		if st.kind == StateLookaround {
			s.restoreSnapshot()
			continue
		}
		s.state = st.next2
		s.pos = f.pos
		return true, nil
	}
}
