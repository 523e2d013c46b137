package nfa

import (
	"fmt"
	"strings"

	"github.com/coregx/ecmare/charclass"
)

// StateID uniquely identifies a state of a compiled NFA.
type StateID uint32

// InvalidState marks an absent successor.
const InvalidState StateID = 0xFFFFFFFF

// StateKind identifies the type of NFA state and determines which fields are
// meaningful.
type StateKind uint8

const (
	// StateChar consumes one code point equal to Rune.
	StateChar StateKind = iota
	// StateClass consumes one code point contained in Class.
	StateClass
	// StateEpsilon moves to Next1 and records Next2 as the alternative.
	StateEpsilon
	// StateCheckCounter drives a counted loop {Min,Max}.
	StateCheckCounter
	// StateDecrementCounter undoes a counter increment on backtracking.
	StateDecrementCounter
	// StateSaveCounter saves and resets a counter before its loop.
	StateSaveCounter
	// StateRestoreCounter restores a saved counter on backtracking.
	StateRestoreCounter
	// StateGroupOpen starts a capturing group.
	StateGroupOpen
	// StateGroupPop undoes a StateGroupOpen on backtracking.
	StateGroupPop
	// StateGroupClose ends a capturing group.
	StateGroupClose
	// StateRepeatPush records the position where a loop iteration started.
	StateRepeatPush
	// StateRepeatPop undoes a StateRepeatPush on backtracking.
	StateRepeatPop
	// StateCheckZeroWidthRepeat stops a loop whose iteration consumed nothing.
	StateCheckZeroWidthRepeat
	// StateBackref matches the text captured by group Index.
	StateBackref
	// StateLookaround runs a lookahead, lookbehind or rewinder body.
	StateLookaround
	// StateLineStart is ^.
	StateLineStart
	// StateLineEnd is $.
	StateLineEnd
	// StateWordBoundary is \b, or \B when Negate is set.
	StateWordBoundary
	// StateAccept ends the whole pattern or a lookaround body.
	StateAccept
	// StateAdvanceOrigin sets the next search start to just past the code
	// point at the current position.
	StateAdvanceOrigin
)

var kindNames = [...]string{
	StateChar:                 "Char",
	StateClass:                "Class",
	StateEpsilon:              "Epsilon",
	StateCheckCounter:         "CheckCounter",
	StateDecrementCounter:     "DecrementCounter",
	StateSaveCounter:          "SaveCounter",
	StateRestoreCounter:       "RestoreCounter",
	StateGroupOpen:            "GroupOpen",
	StateGroupPop:             "GroupPop",
	StateGroupClose:           "GroupClose",
	StateRepeatPush:           "RepeatPush",
	StateRepeatPop:            "RepeatPop",
	StateCheckZeroWidthRepeat: "CheckZeroWidthRepeat",
	StateBackref:              "Backref",
	StateLookaround:           "Lookaround",
	StateLineStart:            "LineStart",
	StateLineEnd:              "LineEnd",
	StateWordBoundary:         "WordBoundary",
	StateAccept:               "Accept",
	StateAdvanceOrigin:        "AdvanceOrigin",
}

// String returns a human-readable representation of the StateKind
func (k StateKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// LookMode selects how a StateLookaround runs its body.
type LookMode uint8

const (
	// LookAhead runs the body forward from the current position.
	LookAhead LookMode = iota
	// LookBehind runs the body backward from the current position.
	LookBehind
	// LookRewind runs the body backward and moves the match start to where
	// it stopped.
	LookRewind
)

// String returns the mode name.
func (m LookMode) String() string {
	switch m {
	case LookAhead:
		return "ahead"
	case LookBehind:
		return "behind"
	case LookRewind:
		return "rewind"
	default:
		return fmt.Sprintf("LookMode(%d)", m)
	}
}

// Infinite is the Max of an unbounded quantifier.
const Infinite = 1<<31 - 1

// State is one node of a compiled NFA. The kind determines which fields are
// valid.
type State struct {
	kind  StateKind
	r     rune
	index uint32

	// next1 is the primary successor. For StateChar and StateClass a value
	// equal to the state's own ID means the state loops on itself.
	next1 StateID
	// next2 is the alternative successor, InvalidState when absent.
	next2 StateID

	min, max  int
	greedy    bool
	negate    bool
	multiline bool
	mode      LookMode
	class     charclass.Pos
}

// Kind returns the state's type
func (s *State) Kind() StateKind {
	return s.kind
}

// Rune returns the code point of a StateChar. Under case-insensitive
// matching it is the canonical fold.
func (s *State) Rune() rune {
	return s.r
}

// Index returns the group, counter or repeat number the state refers to.
func (s *State) Index() int {
	return int(s.index)
}

// Next1 returns the primary successor.
func (s *State) Next1() StateID {
	return s.next1
}

// Next2 returns the alternative successor, or InvalidState.
func (s *State) Next2() StateID {
	return s.next2
}

// Quantifier returns the {min,max} bounds and greediness of counter and
// repeat states. For group states it is the range of nested group numbers.
func (s *State) Quantifier() (min, max int, greedy bool) {
	return s.min, s.max, s.greedy
}

// Negated reports whether a lookaround or word boundary is negated.
func (s *State) Negated() bool {
	return s.negate
}

// Multiline reports whether ^ or $ honors line terminators.
func (s *State) Multiline() bool {
	return s.multiline
}

// Mode returns the lookaround mode.
func (s *State) Mode() LookMode {
	return s.mode
}

// Class returns the class position of a StateClass or StateWordBoundary.
func (s *State) Class() charclass.Pos {
	return s.class
}

// NFA is an immutable compiled automaton. It is safe for concurrent use by
// multiple Backtrackers.
type NFA struct {
	pattern string
	flags   Flags

	states          []State
	entry           StateID
	continuousEntry StateID

	classes *charclass.Table
	newline charclass.Pos

	// numGroups includes group 0.
	numGroups   int
	numCounters int
	numRepeats  int
	names       []string

	foldCase   bool
	literal    []rune
	firstChars charclass.RangeSet
	firstBytes *FirstByteSet
}

// Pattern returns the source pattern.
func (n *NFA) Pattern() string {
	return n.pattern
}

// Flags returns the compile flags.
func (n *NFA) Flags() Flags {
	return n.flags
}

// States returns the number of states.
func (n *NFA) States() int {
	return len(n.states)
}

// State returns the state with the given ID, or nil if out of range.
func (n *NFA) State(id StateID) *State {
	if int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// Entry returns the state an unanchored search attempt starts from.
func (n *NFA) Entry() StateID {
	return n.entry
}

// ContinuousEntry returns the state an anchored attempt starts from. It
// differs from Entry when the compiler placed a rewinder in front of the
// pattern.
func (n *NFA) ContinuousEntry() StateID {
	return n.continuousEntry
}

// Classes returns the flattened class table.
func (n *NFA) Classes() *charclass.Table {
	return n.classes
}

// NumGroups returns the number of capturing groups, group 0 included.
func (n *NFA) NumGroups() int {
	return n.numGroups
}

// GroupNames returns the group names indexed by group number. Unnamed groups
// map to "".
func (n *NFA) GroupNames() []string {
	return n.names
}

// GroupIndex returns the number of the group with the given name, or -1.
func (n *NFA) GroupIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, s := range n.names {
		if s == name {
			return i
		}
	}
	return -1
}

// FoldCase reports whether matching folds subject code points.
func (n *NFA) FoldCase() bool {
	return n.foldCase
}

// Literal returns the literal the pattern consists of, or nil. Under FoldCase
// the runes are canonical folds.
func (n *NFA) Literal() []rune {
	return n.literal
}

// FirstChars returns the set of code points a match can start with.
func (n *NFA) FirstChars() charclass.RangeSet {
	return n.firstChars
}

// FirstBytes returns the lead bytes of FirstChars.
func (n *NFA) FirstBytes() *FirstByteSet {
	return n.firstBytes
}

// String dumps the automaton, one state per line.
func (n *NFA) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "NFA{pattern: %q, flags: %q, groups: %d, entry: %d}\n",
		n.pattern, n.flags.String(), n.numGroups, n.entry)
	for i := range n.states {
		fmt.Fprintf(&b, "  %4d: %s\n", i, n.describe(StateID(i)))
	}
	return b.String()
}

func (n *NFA) describe(id StateID) string {
	s := &n.states[id]
	next := func(x StateID) string {
		if x == InvalidState {
			return "-"
		}
		return fmt.Sprint(x)
	}
	quant := func() string {
		max := "inf"
		if s.max != Infinite {
			max = fmt.Sprint(s.max)
		}
		lazy := ""
		if !s.greedy {
			lazy = "?"
		}
		return fmt.Sprintf("{%d,%s}%s", s.min, max, lazy)
	}
	var detail string
	switch s.kind {
	case StateChar:
		detail = fmt.Sprintf(" %q", s.r)
	case StateClass:
		detail = " " + n.classes.Set(s.class).String()
	case StateCheckCounter:
		detail = fmt.Sprintf(" #%d %s", s.index, quant())
	case StateDecrementCounter, StateSaveCounter, StateRestoreCounter,
		StateRepeatPop, StateCheckZeroWidthRepeat, StateBackref, StateGroupClose:
		detail = fmt.Sprintf(" #%d", s.index)
	case StateGroupOpen, StateGroupPop, StateRepeatPush:
		detail = fmt.Sprintf(" #%d inner %d..%d", s.index, s.min, s.max)
	case StateLookaround:
		detail = " " + s.mode.String()
		if s.negate {
			detail += " negated"
		}
	case StateWordBoundary:
		if s.negate {
			detail = " negated"
		}
	case StateLineStart, StateLineEnd:
		if s.multiline {
			detail = " multiline"
		}
	}
	return fmt.Sprintf("%s%s -> %s, %s", s.kind, detail, next(s.next1), next(s.next2))
}
