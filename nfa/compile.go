package nfa

import (
	"slices"
	"unicode/utf8"

	"github.com/coregx/ecmare/charclass"
	"github.com/coregx/ecmare/internal/ucd"
)

// DefaultMaxNestingDepth bounds group nesting during compilation.
const DefaultMaxNestingDepth = 1000

// CompilerConfig configures NFA compilation behavior
type CompilerConfig struct {
	// Flags are the pattern flags (i, m, s, ...).
	Flags Flags

	// MaxNestingDepth limits group nesting to keep parsing recursion bounded.
	// Default: 1000
	MaxNestingDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{MaxNestingDepth: DefaultMaxNestingDepth}
}

// Compiler compiles ECMAScript patterns into backtracking NFAs. A Compiler
// may be reused but not shared between goroutines.
type Compiler struct {
	config CompilerConfig

	pattern string
	src     []rune
	pos     int
	icase   bool
	reg     *charclass.Registry
	states  []node

	// numGroups counts group 0.
	numGroups   int
	numCounters int
	numRepeats  int
	names       map[string]int
	groupNames  []string
	// minWidths[i] is the minimum width of group i+1.
	minWidths []int

	// back is set while parsing a lookbehind body, whose atoms are laid
	// out in reverse.
	back     bool
	depth    int
	foldExec bool
}

// NewCompiler creates a new NFA compiler with the given configuration
func NewCompiler(config CompilerConfig) *Compiler {
	if config.MaxNestingDepth <= 0 {
		config.MaxNestingDepth = DefaultMaxNestingDepth
	}
	return &Compiler{config: config}
}

// Compile compiles pattern with the given flags using default limits.
func Compile(pattern string, flags Flags) (*NFA, error) {
	cfg := DefaultCompilerConfig()
	cfg.Flags = flags
	return NewCompiler(cfg).Compile(pattern)
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, flags Flags) *NFA {
	n, err := Compile(pattern, flags)
	if err != nil {
		panic(err)
	}
	return n
}

// Compile compiles a pattern into an NFA.
func (c *Compiler) Compile(pattern string) (*NFA, error) {
	if !utf8.ValidString(pattern) {
		return nil, &Error{Kind: ErrorUTF8, Pattern: pattern, Offset: -1}
	}
	c.reset(pattern)

	entry := newNode(StateEpsilon)
	entry.next2 = 1
	states, _, err := c.alternatives([]node{entry})
	if err != nil {
		return nil, err
	}
	if !c.eof() {
		return nil, c.errorf(ErrorParen, "unmatched )")
	}
	c.states = states

	if err := c.resolveBackrefs(); err != nil {
		return nil, err
	}
	c.foldExec = c.icase && c.needsFold()
	literal := c.pureLiteral()

	c.states = append(c.states, node{kind: StateAccept, q: quant{1, 1, true}})
	firstChars := c.optimize()
	return c.freeze(literal, firstChars)
}

func (c *Compiler) reset(pattern string) {
	c.pattern = pattern
	c.src = []rune(pattern)
	c.pos = 0
	c.icase = c.config.Flags&FlagIgnoreCase != 0
	c.reg = charclass.NewRegistry()
	c.states = nil
	c.numGroups = 1
	c.numCounters = 0
	c.numRepeats = 0
	c.names = make(map[string]int)
	c.groupNames = []string{""}
	c.minWidths = c.minWidths[:0]
	c.back = false
	c.depth = 0
	c.foldExec = false
}

func (c *Compiler) eof() bool {
	return c.pos >= len(c.src)
}

func (c *Compiler) peek() rune {
	return c.src[c.pos]
}

func (c *Compiler) next() rune {
	r := c.src[c.pos]
	c.pos++
	return r
}

func (c *Compiler) lookingAt(r rune) bool {
	return c.pos < len(c.src) && c.src[c.pos] == r
}

func (c *Compiler) errorf(kind ErrorKind, detail string) error {
	return &Error{Kind: kind, Pattern: c.pattern, Offset: c.pos, Detail: detail}
}

// alternatives parses a disjunction and appends it to piece. Every branch
// but the last starts with a branch epsilon whose next2 skips to the next
// branch, and ends with a join epsilon chained to the end.
func (c *Compiler) alternatives(piece []node) ([]node, quant, error) {
	var width quant
	prevJoin := -1
	for first := true; ; first = false {
		branch, bw, err := c.branch()
		if err != nil {
			return nil, width, err
		}
		if first {
			width = bw
		} else {
			width.min = min(width.min, bw.min)
			width.max = max(width.max, bw.max)
		}

		more := c.lookingAt('|')
		if more {
			e := newNode(StateEpsilon)
			e.tag = tagBranch
			e.next2 = len(branch) + 2
			piece = append(piece, e)
		}
		piece = append(piece, branch...)
		if prevJoin >= 0 {
			piece[prevJoin].next1 = len(piece) - prevJoin
		}
		if !more {
			return piece, width, nil
		}
		prevJoin = len(piece)
		piece = append(piece, newNode(StateEpsilon))
		c.pos++
	}
}

// branch parses a sequence of quantified atoms up to | or ).
func (c *Compiler) branch() ([]node, quant, error) {
	var out []node
	width := quant{0, 0, true}
	for !c.eof() {
		if r := c.peek(); r == '|' || r == ')' {
			break
		}
		piece, aw, err := c.atom()
		if err != nil {
			return nil, width, err
		}
		q := quant{1, 1, true}
		if piece[0].hasQuantifier() && !c.eof() {
			if q, _, err = c.quantifier(); err != nil {
				return nil, width, err
			}
		}
		if len(piece) == 2 && piece[0].isGroupEpsilon() && piece[1].isGroupEpsilon() {
			// (?:) matches nothing at all.
			continue
		}
		piece = c.combinePiece(piece, q, aw)

		aw.min = satMul(aw.min, q.min)
		aw.max = satMul(aw.max, q.max)
		width.min = satAdd(width.min, aw.min)
		width.max = satAdd(width.max, aw.max)

		if c.back {
			out = append(piece, out...)
		} else {
			out = append(out, piece...)
		}
	}
	return out, width, nil
}

// atom parses one atom and returns its states and width.
func (c *Compiler) atom() ([]node, quant, error) {
	one := quant{1, 1, true}
	start := c.pos
	r := c.next()
	switch r {
	case '(':
		return c.group()
	case '[':
		n, err := c.bracket()
		return []node{n}, one, err
	case '\\':
		return c.atomEscape()
	case '.':
		n := newNode(StateClass)
		if c.config.Flags&FlagDotAll != 0 {
			n.class = charclass.DotAll
		} else {
			n.class = c.reg.Register(charclass.Predefined(charclass.Newline).Negate())
		}
		return []node{n}, one, nil
	case '^', '$':
		n := newNode(StateLineStart)
		if r == '$' {
			n.kind = StateLineEnd
		}
		n.q = quant{0, 0, true}
		n.multiline = c.config.Flags&FlagMultiline != 0
		return []node{n}, n.q, nil
	case '*', '+', '?', '{':
		c.pos = start
		return nil, one, c.errorf(ErrorBadRepeat, "")
	}
	n := newNode(StateChar)
	n.r = c.fold(r)
	return []node{n}, one, nil
}

func (c *Compiler) fold(r rune) rune {
	if c.icase {
		return ucd.Fold(r)
	}
	return r
}

// group parses everything after an opening parenthesis.
func (c *Compiler) group() ([]node, quant, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.config.MaxNestingDepth {
		return nil, quant{}, c.errorf(ErrorSpace, "groups nested too deeply")
	}
	saved := c.back
	defer func() { c.back = saved }()

	name := ""
	if c.lookingAt('?') {
		c.pos++
		if c.eof() {
			return nil, quant{}, c.errorf(ErrorParen, "")
		}
		r := c.next()
		if r == '<' && !c.lookingAt('=') && !c.lookingAt('!') {
			var err error
			if name, err = c.groupName(ErrorParen); err != nil {
				return nil, quant{}, err
			}
			if _, dup := c.names[name]; dup {
				return nil, quant{}, c.errorf(ErrorBackref, "duplicate group name "+name)
			}
		} else {
			behind := r == '<'
			if behind {
				r = c.next()
			}
			switch r {
			case ':':
				return c.nonCapturing()
			case '=', '!':
				return c.lookaround(behind, r == '!')
			}
			c.pos--
			return nil, quant{}, c.errorf(ErrorParen, "unknown group syntax")
		}
	}
	if c.config.Flags&FlagNoSubs != 0 {
		return c.nonCapturing()
	}
	return c.capturing(name)
}

func (c *Compiler) closeParen() error {
	if c.eof() {
		return c.errorf(ErrorParen, "missing )")
	}
	c.pos++
	return nil
}

func (c *Compiler) capturing(name string) ([]node, quant, error) {
	index := c.numGroups
	c.numGroups++
	c.groupNames = append(c.groupNames, name)
	c.minWidths = append(c.minWidths, 0)
	if name != "" {
		c.names[name] = index
	}

	open := newNode(StateGroupOpen)
	open.index = index
	open.next1 = 2
	open.next2 = 1
	pop := newNode(StateGroupPop)
	pop.index = index
	pop.next1 = 0

	piece, width, err := c.alternatives([]node{open, pop})
	if err != nil {
		return nil, width, err
	}
	if err := c.closeParen(); err != nil {
		return nil, width, err
	}

	inner := quant{index + 1, c.numGroups - 1, true}
	piece[0].q = inner
	piece[1].q = inner
	c.minWidths[index-1] = width.min

	closing := newNode(StateGroupClose)
	closing.index = index
	closing.next2 = 1
	return append(piece, closing), width, nil
}

func (c *Compiler) nonCapturing() ([]node, quant, error) {
	open := newNode(StateEpsilon)
	open.tag = tagGroup
	open.q.min = c.numGroups

	piece, width, err := c.alternatives([]node{open})
	if err != nil {
		return nil, width, err
	}
	if err := c.closeParen(); err != nil {
		return nil, width, err
	}
	// A lone assertion keeps its group, so (?:^)+ still has something to
	// repeat.
	if len(piece) == 2 && piece[1].hasQuantifier() {
		return piece[1:], width, nil
	}
	piece[0].q.max = c.numGroups - 1

	closing := newNode(StateEpsilon)
	closing.tag = tagGroup
	return append(piece, closing), width, nil
}

func (c *Compiler) lookaround(behind, negate bool) ([]node, quant, error) {
	la := newNode(StateLookaround)
	la.next2 = 1
	la.negate = negate
	la.q = quant{0, 0, true}
	if behind {
		la.mode = LookBehind
	}
	c.back = behind

	piece, _, err := c.alternatives([]node{la})
	if err != nil {
		return nil, quant{}, err
	}
	if err := c.closeParen(); err != nil {
		return nil, quant{}, err
	}
	piece[0].next1 = len(piece) + 1
	return append(piece, node{kind: StateAccept}), quant{0, 0, true}, nil
}

// combinePiece applies quantifier q to an atom of the given width.
func (c *Compiler) combinePiece(piece []node, q quant, width quant) []node {
	first := piece[0]
	zeroWidthChecker := first.kind == StateGroupOpen || first.kind == StateBackref
	groupWithCaptures := first.isGroupEpsilon() && first.q.hasRange()

	if q.max == 0 {
		return nil
	}

	head := newNode(StateEpsilon)
	head.q = q
	if first.isCharOrClass() {
		head.tag = tagStar
	}

	if q.max == 1 {
		if piece[0].kind == StateGroupOpen {
			// Inner groups need no reset when the group cannot repeat.
			piece[0].q.max = 0
			piece[1].q.max = 0
		}
		if q.min == 1 {
			return piece
		}
		if q.greedy {
			head.next2 = len(piece) + 1
		} else {
			head.next1 = len(piece) + 1
			head.next2 = 1
		}
		return append([]node{head}, piece...)
	}

	if len(piece) == 1 && first.isCharOrClass() &&
		((q.min <= 1 && q.max <= 3) || (q.min == 2 && q.max <= 4) || (q.min == q.max && q.max <= 6)) {
		out := make([]node, 0, q.min+2*(q.max-q.min))
		for range q.min {
			out = append(out, first)
		}
		if q.min == q.max {
			return out
		}
		if q.greedy {
			head.next2 = (q.max - q.min) * 2
		} else {
			head.next1 = (q.max - q.min) * 2
			head.next2 = 1
		}
		for i := q.min; i < q.max; i++ {
			out = append(out, head, first)
			if q.greedy {
				head.next2 -= 2
			} else {
				head.next1 -= 2
			}
		}
		return out
	}

	var prefix []node
	switch {
	case q.min == 0 && q.infinite():
	case q.min == 1 && q.infinite():
		if len(piece) == 1 && first.isCharOrClass() {
			prefix = append(prefix, first)
			head.q.min--
		} else {
			entry := newNode(StateEpsilon)
			entry.next1 = 2
			prefix = append(prefix, entry)
		}
	default:
		index := c.numCounters
		c.numCounters++

		save := newNode(StateSaveCounter)
		save.index = index
		save.next1 = 2
		save.next2 = 1
		restore := newNode(StateRestoreCounter)
		restore.index = index
		restore.next1 = 0
		prefix = append(prefix, save, restore)

		dec := newNode(StateDecrementCounter)
		dec.index = index
		dec.next1 = 0

		inc := head
		inc.next1 = 2
		inc.index = 0
		for _, n := range piece {
			if !n.isCharOrClass() && (n.kind != StateEpsilon || n.next2 != 0) {
				inc.next2 = 1
				break
			}
		}
		piece = slices.Insert(piece, 0, inc, dec)

		head.kind = StateCheckCounter
		head.index = index
	}

	if !groupWithCaptures && (width.min > 0 || zeroWidthChecker) {
		piece[len(piece)-1].next1 = -len(piece)
		head.next1 = 1
		head.next2 = len(piece) + 1
	} else {
		head.next1 = 1
		head.next2 = len(piece) + 4

		index := c.numRepeats
		c.numRepeats++
		org := 0
		if head.kind == StateCheckCounter {
			org = 2
		}
		rq := quant{1, 0, true}
		if groupWithCaptures {
			rq = piece[org].q
		}
		push := newNode(StateRepeatPush)
		push.index = index
		push.next1 = 2
		push.next2 = 1
		push.q = rq
		pop := newNode(StateRepeatPop)
		pop.index = index
		pop.next1 = 0
		pop.q = rq
		piece = slices.Insert(piece, org, push, pop)

		check := newNode(StateCheckZeroWidthRepeat)
		check.index = index
		check.next1 = -len(piece) - 1
		check.next2 = 1
		piece = append(piece, check)
	}
	if !q.greedy {
		head.next1, head.next2 = head.next2, head.next1
	}

	out := make([]node, 0, len(prefix)+1+len(piece))
	out = append(out, prefix...)
	out = append(out, head)
	return append(out, piece...)
}

// freeze converts relative offsets into state IDs.
func (c *Compiler) freeze(literal []rune, firstChars charclass.RangeSet) (*NFA, error) {
	tab := c.reg.Flatten()
	states := make([]State, len(c.states))
	for i := range c.states {
		nd := &c.states[i]
		s := &states[i]
		s.kind = nd.kind
		s.r = nd.r
		s.index = uint32(nd.index)
		s.min, s.max, s.greedy = nd.q.min, nd.q.max, nd.q.greedy
		s.negate = nd.negate
		s.multiline = nd.multiline
		s.mode = nd.mode

		var ok1, ok2 bool
		s.next1, ok1 = c.target(i, nd.next1, nd.isCharOrClass())
		s.next2, ok2 = c.target(i, nd.next2, false)
		if !ok1 || !ok2 {
			return nil, &Error{Kind: ErrorInternal, Pattern: c.pattern, Offset: -1, Detail: "successor out of range"}
		}
		if nd.kind == StateClass || nd.kind == StateWordBoundary {
			s.class = tab.Pos(nd.class)
		}
	}

	n := &NFA{
		pattern:     c.pattern,
		flags:       c.config.Flags,
		states:      states,
		entry:       states[0].next1,
		classes:     tab,
		newline:     tab.Pos(charclass.Newline),
		numGroups:   c.numGroups,
		numCounters: c.numCounters,
		numRepeats:  c.numRepeats,
		names:       slices.Clone(c.groupNames),
		foldCase:    c.foldExec,
		literal:     literal,
		firstChars:  firstChars,
		firstBytes:  NewFirstByteSet(firstChars),
	}
	n.continuousEntry = states[0].next2
	return n, nil
}

func (c *Compiler) target(i, off int, selfLoop bool) (StateID, bool) {
	if off == 0 && !selfLoop {
		return InvalidState, true
	}
	t := i + off
	if t < 0 || t >= len(c.states) {
		return InvalidState, false
	}
	return StateID(t), true
}
