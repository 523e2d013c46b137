package nfa

import (
	"errors"
	"unicode/utf8"

	"github.com/coregx/ecmare/internal/ucd"
)

// DefaultMaxFailures is the failure budget of one match attempt.
const DefaultMaxFailures = 1 << 24

// DefaultMaxStack is the number of backtracking frames one match attempt
// may hold.
const DefaultMaxStack = 1 << 22

// Backtracker executes an NFA with leftmost-first semantics. It holds no
// per-search state and is safe for concurrent use; every goroutine needs its
// own SearchState.
//
// The executor is a loop over states with an explicit stack of frames
// instead of recursion, so deep patterns cannot overflow the goroutine
// stack. Work is bounded two ways:
//   - maxFailures limits backtracking steps of one attempt (ErrComplexity)
//   - maxStack limits frames held at once by one attempt (ErrStack)
//
// Either limit ends the search with an error; the automaton and the
// SearchState stay usable.
type Backtracker struct {
	nfa *NFA

	// maxFailures is the failure budget of each match attempt.
	// Default: DefaultMaxFailures
	maxFailures int

	// maxStack is the number of frames one attempt may hold.
	// Default: DefaultMaxStack
	maxStack int
}

// NewBacktracker creates a backtracker for n. Every match attempt may fail
// at most maxFailures times before the search gives up with
// ErrComplexity; values <= 0 select DefaultMaxFailures.
func NewBacktracker(n *NFA, maxFailures int) *Backtracker {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	return &Backtracker{nfa: n, maxFailures: maxFailures, maxStack: DefaultMaxStack}
}

// SetMaxStack limits the backtracking frames of one match attempt. An
// attempt that needs more fails with ErrStack; values <= 0 select
// DefaultMaxStack. It must not be called once searches are running.
func (b *Backtracker) SetMaxStack(frames int) {
	if frames <= 0 {
		frames = DefaultMaxStack
	}
	b.maxStack = frames
}

// NFA returns the automaton.
func (b *Backtracker) NFA() *NFA {
	return b.nfa
}

// Search looks for the leftmost match in subject starting at byte offset
// start. Lookbehinds, ^ and \b may inspect subject down to lookbehindLimit
// (<= start). On success the spans are available from s.
//
// Without Continuous, an attempt is made at every code point boundary whose
// first byte can begin a match, each with a fresh failure budget. With
// Continuous, one attempt is made at start from the anchored entry, which
// bypasses any rewinder in front of the pattern.
func (b *Backtracker) Search(s *SearchState, subject []byte, start, lookbehindLimit int, flags MatchFlags) (bool, error) {
	n := b.nfa
	if start < 0 || start > len(subject) {
		return false, nil
	}
	lookbehindLimit = max(0, min(lookbehindLimit, start))
	s.reset(n, subject, start, lookbehindLimit, flags)

	entry, last := n.entry, len(subject)
	if flags&Continuous != 0 {
		entry, last = n.continuousEntry, start
	}
	fb := n.firstBytes
	s.maxStack = b.maxStack

	s.nextPos = start
	for {
		final := s.nextPos >= last
		s.pos = s.nextPos
		if !final {
			c := subject[s.nextPos]
			w := 1
			if c >= utf8.RuneSelf {
				_, w = utf8.DecodeRune(subject[s.nextPos:])
			}
			s.nextPos += w
			if !fb.Contains(c) {
				continue
			}
		}

		s.state = entry
		s.groups[0].open = s.pos
		s.failures = b.maxFailures
		s.bt = s.bt[:0]
		s.btFloor = 0

		ok, err := b.run(s, false)
		if err != nil {
			kind := ErrorComplexity
			if errors.Is(err, ErrStack) {
				kind = ErrorStack
			}
			return false, &Error{Kind: kind, Pattern: n.pattern, Offset: -1}
		}
		if ok {
			s.groups[0].close = s.pos
			return true, nil
		}
		if final {
			return false, nil
		}
	}
}

// run executes from s.state until Accept or until every backtracking point
// above the floor is exhausted. reverse runs lookbehind bodies right to
// left.
//
// Each state either matches and continues with next1, jumps directly to a
// successor, or fails. A state that may need undoing pushes a frame first;
// on failure backtrack pops frames and resumes at the popped state's next2
// with the saved position. States with side effects (group opens, counter
// saves, repeat pushes) have a next2 that restores them and fails again, so
// unwinding the stack undoes every change in reverse order.
//
//nolint:gocognit,gocyclo,cyclop,funlen // one dispatch loop over every state kind
func (b *Backtracker) run(s *SearchState, reverse bool) (bool, error) {
	n := b.nfa
	states := n.states
	for {
		if len(s.bt) > s.maxStack {
			return false, ErrStack
		}
		st := &states[s.state]
		switch st.kind {
		case StateChar:
			c, w, ok := s.read(reverse)
			if !ok {
				if st.next2 != InvalidState {
					s.state = st.next2
					continue
				}
				goto fail
			}
			if n.foldCase {
				c = ucd.Fold(c)
			}
			for c != st.r {
				if st.next2 == InvalidState {
					goto fail
				}
				s.state = st.next2
				st = &states[s.state]
				if st.kind != StateChar {
					goto dispatch
				}
			}
			s.advance(w, reverse)

		case StateClass:
			c, w, ok := s.read(reverse)
			if ok && n.classes.Contains(st.class, c) {
				s.advance(w, reverse)
				break
			}
			if st.next2 != InvalidState {
				s.state = st.next2
				continue
			}
			goto fail

		case StateEpsilon:
			if st.next2 != InvalidState {
				s.push(s.state)
			}

		case StateCheckCounter:
			// Below min the body is mandatory; between min and max a frame
			// keeps the other choice; at a finite max the loop must exit.
			c := s.counters[st.index]
			if c < st.max {
				s.counters[st.index] = c + 1
			} else if st.max != Infinite {
				if st.greedy {
					s.state = st.next2
				} else {
					s.state = st.next1
				}
				continue
			}
			if c >= st.min {
				s.push(s.state)
				break
			}
			if st.greedy {
				s.state = st.next1
			} else {
				s.state = st.next2
			}
			continue

		case StateDecrementCounter:
			s.counters[st.index]--
			goto fail

		case StateSaveCounter:
			s.countStack = append(s.countStack, s.counters[st.index])
			s.push(s.state)
			s.counters[st.index] = 0

		case StateRestoreCounter:
			s.counters[st.index] = s.countStack[len(s.countStack)-1]
			s.countStack = s.countStack[:len(s.countStack)-1]
			goto fail

		case StateGroupOpen:
			g := &s.groups[st.index]
			s.captureStack = append(s.captureStack, *g)
			if reverse {
				g.close = s.pos
			} else {
				g.open = s.pos
			}
			g.count++
			for i := st.min; i <= st.max; i++ {
				s.captureStack = append(s.captureStack, s.groups[i])
				s.groups[i] = unsetCapture
			}
			s.push(s.state)

		case StateGroupPop:
			for i := st.max; i >= st.min; i-- {
				s.groups[i] = s.popCapture()
			}
			s.groups[st.index] = s.popCapture()
			goto fail

		case StateGroupClose:
			g := &s.groups[st.index]
			mark := g.open
			if reverse {
				mark = g.close
			}
			next := st.next1
			// An empty iteration of a repeated group may not loop again.
			if mark == s.pos {
				nx := &states[st.next1]
				if nx.kind != StateCheckCounter {
					if g.count > 1 {
						goto fail
					}
					next = st.next2
				} else if s.counters[nx.index] > nx.min {
					goto fail
				}
			}
			if reverse {
				g.open = s.pos
			} else {
				g.close = s.pos
			}
			s.state = next
			continue

		case StateRepeatPush:
			s.repeatStack = append(s.repeatStack, s.repeats[st.index])
			s.repeats[st.index] = s.pos
			for i := st.min; i <= st.max; i++ {
				s.captureStack = append(s.captureStack, s.groups[i])
				s.groups[i] = unsetCapture
			}
			s.push(s.state)

		case StateRepeatPop:
			for i := st.max; i >= st.min; i-- {
				s.groups[i] = s.popCapture()
			}
			s.repeats[st.index] = s.repeatStack[len(s.repeatStack)-1]
			s.repeatStack = s.repeatStack[:len(s.repeatStack)-1]
			goto fail

		case StateCheckZeroWidthRepeat:
			if s.pos == s.repeats[st.index] {
				s.state = st.next2
				continue
			}

		case StateBackref:
			// An unset or empty group matches the empty string.
			g := s.groups[st.index]
			if g.count == 0 || g.open == g.close {
				s.state = st.next2
				continue
			}
			if !b.matchBackref(s, g, reverse) {
				goto fail
			}

		case StateLookaround:
			ok, err := b.lookaround(s, s.state, reverse)
			if err != nil {
				return false, err
			}
			if !ok {
				goto fail
			}

		case StateLineStart:
			if s.pos == s.lblim && s.flags&PrevAvail == 0 {
				if s.flags&NotBOL != 0 {
					goto fail
				}
				break
			}
			if !st.multiline {
				goto fail
			}
			if c, ok := s.prev(); !ok || !n.classes.Contains(n.newline, c) {
				goto fail
			}

		case StateLineEnd:
			if s.pos == s.end {
				if s.flags&NotEOL != 0 {
					goto fail
				}
				break
			}
			if !st.multiline {
				goto fail
			}
			if c, _, _ := s.read(false); !n.classes.Contains(n.newline, c) {
				goto fail
			}

		case StateWordBoundary:
			if !b.atBoundary(s, st) {
				goto fail
			}

		case StateAccept:
			if s.depth > 0 {
				return true, nil
			}
			if s.flags&NotNull != 0 && s.pos == s.groups[0].open {
				goto fail
			}
			if s.flags&MatchAtEnd != 0 && s.pos != s.end {
				goto fail
			}
			return true, nil

		case StateAdvanceOrigin:
			s.nextPos = s.pos
			if _, w, ok := s.read(false); ok {
				s.nextPos += w
			}
		}

		// Matched: continue with the primary successor.
		s.state = st.next1
		continue

	dispatch:
		continue

	fail:
		if ok, err := s.backtrack(states); err != nil || !ok {
			return false, err
		}
	}
}

// advance moves past a consumed code point of width w.
func (s *SearchState) advance(w int, reverse bool) {
	if reverse {
		s.pos -= w
	} else {
		s.pos += w
	}
}

// popCapture pops a group value saved by a group open or repeat push.
func (s *SearchState) popCapture() capture {
	c := s.captureStack[len(s.captureStack)-1]
	s.captureStack = s.captureStack[:len(s.captureStack)-1]
	return c
}

// matchBackref compares the text of group g with the subject at the
// current position and advances past it.
func (b *Backtracker) matchBackref(s *SearchState, g capture, reverse bool) bool {
	fold := b.nfa.foldCase
	p := s.pos
	if !reverse {
		for i := g.open; i < g.close; {
			rc, rw := utf8.DecodeRune(s.subject[i:g.close])
			if p >= s.end {
				return false
			}
			sc, sw := utf8.DecodeRune(s.subject[p:s.end])
			if rc != sc && (!fold || ucd.Fold(rc) != ucd.Fold(sc)) {
				return false
			}
			i += rw
			p += sw
		}
	} else {
		for i := g.close; i > g.open; {
			rc, rw := utf8.DecodeLastRune(s.subject[g.open:i])
			if p <= s.lblim {
				return false
			}
			sc, sw := utf8.DecodeLastRune(s.subject[s.lblim:p])
			if rc != sc && (!fold || ucd.Fold(rc) != ucd.Fold(sc)) {
				return false
			}
			i -= rw
			p -= sw
		}
	}
	s.pos = p
	return true
}

// atBoundary evaluates \b (or \B) at the current position.
func (b *Backtracker) atBoundary(s *SearchState, st *State) bool {
	classes := b.nfa.classes
	m := st.negate
	if s.pos < s.end {
		if c, _, _ := s.read(false); classes.Contains(st.class, c) {
			m = !m
		}
	} else if s.flags&NotEOW != 0 {
		m = !m
	}
	if s.pos > s.lblim || s.flags&PrevAvail != 0 {
		if c, ok := s.prev(); ok && classes.Contains(st.class, c) {
			m = !m
		}
	} else if s.flags&NotBOW != 0 {
		m = !m
	}
	return m
}

// lookaround runs the body of the lookaround state id as an atomic
// sub-search. Captures set by a successful positive body stay visible;
// a backtracking frame restores the state from before the lookaround if
// the search later backtracks past it.
func (b *Backtracker) lookaround(s *SearchState, id StateID, reverse bool) (bool, error) {
	st := &b.nfa.states[id]
	s.snapshot()
	capBottom, countBottom, repBottom := len(s.captureStack), len(s.countStack), len(s.repeatStack)
	btBottom, floor := len(s.bt), s.btFloor
	origin, lblim := s.pos, s.lblim

	s.btFloor = btBottom
	if st.mode == LookRewind {
		s.lblim = s.begin
	}
	s.depth++
	s.state = st.next2
	ok, err := b.run(s, st.mode != LookAhead)
	s.depth--
	if err != nil {
		return false, err
	}

	if st.mode == LookRewind {
		s.lblim = lblim
		if ok {
			s.groups[0].open = s.pos
		}
	}
	s.pos = origin
	s.bt = s.bt[:btBottom]
	s.btFloor = floor
	s.captureStack = s.captureStack[:capBottom]
	s.countStack = s.countStack[:countBottom]
	s.repeatStack = s.repeatStack[:repBottom]
	s.state = id

	if ok != st.negate {
		s.push(id)
		return true, nil
	}
	s.restoreSnapshot()
	return false, nil
}
