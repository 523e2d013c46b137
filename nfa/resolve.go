package nfa

import (
	"strconv"

	"github.com/coregx/ecmare/internal/ucd"
)

// resolveBackrefs binds named backreferences and checks group numbers. A
// reference to a group that closes later in state order (or never closes)
// can only ever match the empty string, so it becomes a plain epsilon.
func (c *Compiler) resolveBackrefs() error {
	for i := range c.states {
		st := &c.states[i]
		if st.kind != StateBackref {
			continue
		}
		if st.name != "" {
			n, ok := c.names[st.name]
			if !ok {
				return &Error{Kind: ErrorBackref, Pattern: c.pattern, Offset: -1, Detail: "unknown group name " + st.name}
			}
			st.index = n
		}
		if st.index <= 0 || st.index >= c.numGroups {
			return &Error{Kind: ErrorBackref, Pattern: c.pattern, Offset: -1, Detail: "no group " + strconv.Itoa(st.index)}
		}

		closeAt := -1
		for j := range c.states {
			if c.states[j].kind == StateGroupClose && c.states[j].index == st.index {
				closeAt = j
				break
			}
		}
		if closeAt >= 0 && closeAt < i {
			st.q.min = c.minWidths[st.index-1]
			continue
		}
		// An empty reference leaves through next2, which also exits any loop
		// it was repeated in.
		st.kind = StateEpsilon
		st.next1 = st.next2
		st.next2 = 0
	}
	return nil
}

// needsFold reports whether subject code points must be folded while
// matching: some literal has case variants, or a backreference compares
// captured text.
func (c *Compiler) needsFold() bool {
	for i := range c.states {
		switch st := &c.states[i]; st.kind {
		case StateChar:
			if ucd.FoldSetSize(st.r) > 1 {
				return true
			}
		case StateBackref:
			return true
		}
	}
	return false
}

// pureLiteral returns the runes of a pattern made of two or more literal
// characters and nothing else.
func (c *Compiler) pureLiteral() []rune {
	if len(c.states) < 3 {
		return nil
	}
	lit := make([]rune, 0, len(c.states)-1)
	for _, st := range c.states[1:] {
		if st.kind != StateChar {
			return nil
		}
		lit = append(lit, st.r)
	}
	return lit
}
