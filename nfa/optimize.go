package nfa

import (
	"github.com/coregx/ecmare/charclass"
	"github.com/coregx/ecmare/internal/conv"
	"github.com/coregx/ecmare/internal/sparse"
)

// optimize runs the rewrites in order and returns the set of code points a
// match can begin with.
//
// Passes:
//   - factorBranches hoists an atom shared by adjacent alternatives
//   - optimizeStars makes exclusive loops possessive and plants the
//     restart point (AdvanceOrigin or a rewinder) after a leading loop
//   - disambiguateBranches drops backtracking points that can never pay off
//   - firstChars gathers the start set before epsilons disappear
//   - skipEpsilons shortcuts plain epsilons
//
// Every pass rewrites relative offsets in place and preserves the language
// and the leftmost-first match order.
func (c *Compiler) optimize() charclass.RangeSet {
	c.factorBranches()
	c.optimizeStars()
	c.disambiguateBranches()
	first := c.firstChars()
	c.skipEpsilons()
	return first
}

// visited returns an empty set sized for the current state array, used to
// cut cycles in recursive walks.
func (c *Compiler) visited() *sparse.Set {
	return sparse.New(conv.IntToUint32(len(c.states)))
}

// fullRange is the set of every code point. Gathering falls back to it
// whenever a start cannot be narrowed down.
func fullRange() charclass.RangeSet {
	return charclass.NewRangeSet(charclass.Range{Lo: 0, Hi: charclass.MaxRune})
}

// insertAt inserts n plain epsilons before pos and adjusts every offset so
// that existing references keep pointing at the same states.
func (c *Compiler) insertAt(pos, n int) {
	for i := 0; i < pos; i++ {
		st := &c.states[i]
		if st.next1 != 0 && i+st.next1 >= pos {
			st.next1 += n
		}
		if st.next2 != 0 && i+st.next2 >= pos {
			st.next2 += n
		}
	}
	for i := pos; i < len(c.states); i++ {
		st := &c.states[i]
		if i+st.next1 < pos {
			st.next1 -= n
		}
		if i+st.next2 < pos {
			st.next2 -= n
		}
	}
	ins := make([]node, n)
	for i := range ins {
		ins[i] = newNode(StateEpsilon)
	}
	c.states = append(c.states[:pos], append(ins, c.states[pos:]...)...)
}

// gather adds to set every code point that can be consumed first when
// matching from pos, and reports whether the rest of the pattern (or of
// group, when non-zero) can be reached without consuming anything. With
// subsequent set, assertions count as consuming any code point.
//
// The walk follows next1 iteratively and recurses into next2 for states
// whose alternative can be taken without consuming input. States whose
// next2 is bookkeeping (counter saves, group opens, repeat pushes,
// lookaround bodies) are not followed there. A backreference is followed both ways:
// its group body may be consumed, and an unset or empty group leaves
// through next2 without consuming anything.
//
// seen must be fresh for every top-level call; it keeps loops from being
// walked twice.
func (c *Compiler) gather(set *charclass.RangeSet, pos int, seen *sparse.Set, group int, subsequent bool) bool {
	empty := false
	for {
		if !seen.Visit(conv.IntToUint32(pos)) {
			break
		}

		st := c.states[pos]
		if st.next2 != 0 &&
			(st.kind != StateCheckCounter || !st.q.greedy || st.q.min == 0) &&
			st.kind != StateSaveCounter &&
			st.kind != StateGroupOpen &&
			(st.kind != StateGroupClose || st.index != group) &&
			st.kind != StateRepeatPush &&
			(st.kind != StateBackref || st.next1 != st.next2) &&
			st.kind != StateLookaround {
			if c.gather(set, pos+st.next2, seen, group, subsequent) {
				empty = true
			}
		}

		switch st.kind {
		case StateChar:
			set.AddRune(st.r)
			if c.foldExec {
				*set = set.CaseUnfold()
			}
			return empty
		case StateClass:
			set.Merge(c.reg.Class(st.class))
			return empty
		case StateBackref:
			// The group may not have participated, so the walk goes on past
			// the reference as well.
			if body := c.groupBody(st.index); body >= 0 {
				c.gather(set, body, c.visited(), st.index, subsequent)
			}
		case StateLineStart, StateLineEnd, StateWordBoundary:
			if subsequent {
				*set = fullRange()
			}
		case StateLookaround:
			if !st.negate && st.mode == LookAhead {
				c.gather(set, pos+1, seen, 0, subsequent)
			} else if subsequent {
				*set = fullRange()
			}
		case StateGroupClose:
			if st.index == group {
				return true
			}
		case StateAccept:
			return true
		case StateCheckCounter:
			if !st.q.greedy && st.q.min >= 1 {
				return empty
			}
		}
		if st.next1 == 0 {
			break
		}
		pos += st.next1
	}
	return empty
}

// groupBody returns the first state inside group n, or -1.
func (c *Compiler) groupBody(n int) int {
	for i := range c.states {
		if c.states[i].kind == StateGroupOpen && c.states[i].index == n {
			return i + c.states[i].next1
		}
	}
	return -1
}

// atomSet returns the set a char or class node consumes.
func (c *Compiler) atomSet(n *node) (charclass.RangeSet, bool) {
	switch n.kind {
	case StateChar:
		return charclass.RuneSet(n.r), true
	case StateClass:
		return c.reg.Class(n.class), true
	}
	return charclass.RangeSet{}, false
}

// factorBranches hoists a leading atom shared by consecutive alternatives,
// turning ab|ac into a(?:b|c).
func (c *Compiler) factorBranches() {
	for pos := 0; pos < len(c.states); pos++ {
		if !c.states[pos].isBranch() {
			continue
		}
		next1pos := pos + c.states[pos].next1
		base, ok := c.atomSet(&c.states[next1pos])
		if !ok || c.states[next1pos].next2 != 0 {
			continue
		}
		prechain := pos
		next2pos := pos + c.states[pos].next2
		postchain := 0

	scan:
		for {
			n2n1 := next2pos
			n2n2 := 0
			if c.states[next2pos].isBranch() {
				n2n2 = next2pos + c.states[next2pos].next2
				n2n1 += c.states[next2pos].next1
			}
			alt, ok := c.atomSet(&c.states[n2n1])
			if !ok || c.states[n2n1].next2 != 0 {
				break
			}
			switch base.Relation(alt) {
			case charclass.Same:
				if n2n2 != 0 {
					c.states[next2pos] = newNode(StateEpsilon)
				}
				if postchain == 0 {
					postchain = next1pos + 1
					c.insertAt(postchain, 1)
					c.states[next1pos].next1 = 1
				} else {
					prev := postchain
					postchain = prev + c.states[prev].next2
					c.insertAt(postchain, 1)
					c.states[prev].next2 = postchain - prev
				}
				n2n1++
				if prechain >= postchain {
					prechain++
				}
				if n2n2 != 0 {
					n2n2++
					c.states[prechain].next2 = n2n2 - prechain
				} else {
					c.states[prechain].next2 = 0
				}
				b := &c.states[postchain]
				b.tag = tagBranch
				b.next2 = n2n1 + c.states[n2n1].next1 - postchain
			case charclass.Overlapping:
				break scan
			default:
				prechain = next2pos
			}
			if n2n2 == 0 {
				break
			}
			next2pos = n2n2
		}
	}
}

// optimizeStars makes greedy loops over a char or class possessive when
// nothing that follows could start with what the loop consumes, and
// arranges for failed attempts to resume after such a loop.
func (c *Compiler) optimizeStars() {
	starEps := -1
	prevChar := -1
	advanceAt := 0
	updatable := true
	inserted := false

	for cur := 1; cur < len(c.states); cur++ {
		st := &c.states[cur]
		switch st.kind {
		case StateEpsilon:
			if st.tag == tagStar {
				starEps = cur
			} else {
				starEps = -1
				updatable = false
			}
			continue
		case StateChar, StateClass:
		default:
			starEps = -1
			updatable = false
			continue
		}

		if updatable {
			if prevChar >= 0 && !sameAtom(&c.states[prevChar], st) {
				updatable = false
			}
			if updatable && starEps >= 0 {
				updatable = false
				if eq := c.states[starEps].q; eq.min <= 1 && eq.infinite() {
					advanceAt = cur + 1
				}
			}
			prevChar = cur
		}
		if starEps < 0 {
			continue
		}

		eq := c.states[starEps].q
		far := c.states[starEps].next2
		if !eq.greedy {
			far = c.states[starEps].next1
		}
		next := starEps + far
		before := len(c.states)
		if c.isExclusive(eq, cur, next) {
			e := &c.states[starEps]
			e.next1 = 1
			e.next2 = 0
			e.index = 0
			ch := &c.states[cur]
			ch.next2 = far - 1
			if eq.infinite() {
				ch.next1 = 0
			}
			if advanceAt == next && before != len(c.states) {
				inserted = true
			}
		}
		starEps = -1
	}

	if advanceAt == 0 {
		return
	}
	cur := advanceAt
	if c.states[cur].kind == StateAccept {
		return
	}
	if !inserted && c.states[cur-1].next1 == 0 && c.insertRewinder(cur) {
		return
	}

	c.insertAt(cur, 1)
	adv := newNode(StateAdvanceOrigin)
	ch := &c.states[cur-1]
	switch {
	case inserted:
		ch.next2 = 1
	case ch.next1 == 0:
		adv.next1 = ch.next2 - 1
		ch.next2 = 1
	default:
		adv.next1 = -2
		ch.next1 = 1
	}
	c.states[cur] = adv
}

// insertRewinder handles patterns that begin with a possessive loop whose
// follow set is much narrower than the loop set. Instead of running the
// loop at every start position, the search looks for the follow set and a
// leading lookbehind copy of the loop rewinds the match start.
func (c *Compiler) insertRewinder(cur int) bool {
	prevSet, ok := c.atomSet(&c.states[cur-1])
	if !ok {
		return false
	}
	var nextSet charclass.RangeSet
	c.gather(&nextSet, cur, c.visited(), 0, true)
	if n := nextSet.Count(); n == 0 || n >= prevSet.Count() {
		return false
	}

	block := make([]node, 0, cur+1)
	la := newNode(StateLookaround)
	la.mode = LookRewind
	la.q = quant{0, 0, true}
	la.next1 = (cur-1)*2 + 2
	la.next2 = 1
	block = append(block, la)
	block = append(block, c.states[1:cur]...)
	block = append(block, node{kind: StateAccept})

	c.insertAt(1, len(block))
	copy(c.states[1:], block)
	c.states[0].next2 = c.states[0].next1
	c.states[0].next1 = 1
	return true
}

// sameAtom reports whether a and b consume exactly the same code points.
// Classes compare by registry id, which is unique per range set.
func sameAtom(a, b *node) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == StateChar {
		return a.r == b.r
	}
	return a.class == b.class
}

// isExclusive reports whether the loop at cur can never give back a code
// point that the states from next could consume. It may split a class loop
// into an exclusive part and a backtracking part.
func (c *Compiler) isExclusive(eq quant, cur, next int) bool {
	curSet, ok := c.atomSet(&c.states[cur])
	if !ok {
		return false
	}
	if curSet.IsEmpty() {
		return true
	}

	var nextSet charclass.RangeSet
	empty := c.gather(&nextSet, next, c.visited(), 0, true)
	if nextSet.IsEmpty() {
		if !empty || c.onlyAcceptLeft(next) {
			return eq.greedy
		}
		return false
	}
	if empty && !eq.greedy {
		return false
	}

	kept, removed := curSet.Split(nextSet)
	if removed.IsEmpty() {
		return true
	}
	if c.states[cur].kind != StateClass || kept.IsEmpty() || !eq.infinite() {
		return false
	}

	keptNode := c.charOrClass(kept)
	c.states[cur].kind = keptNode.kind
	c.states[cur].r = keptNode.r
	c.states[cur].class = keptNode.class

	c.insertAt(next, 2)
	star := newNode(StateEpsilon)
	star.tag = tagStar
	star.q = eq
	star.next2 = 2
	if !eq.greedy {
		star.next1 = 2
		star.next2 = 1
	}
	c.states[next] = star

	back := c.charOrClass(removed)
	back.next1 = -2
	c.states[next+1] = back
	return true
}

// onlyAcceptLeft reports whether every path from pos reaches Accept without
// consuming input or testing anything.
func (c *Compiler) onlyAcceptLeft(pos int) bool {
	for range c.states {
		st := &c.states[pos]
		switch st.kind {
		case StateAccept:
			return true
		case StateGroupClose, StateBackref:
			if st.next2 != 0 && st.next1 != st.next2 {
				return false
			}
		case StateEpsilon:
			if st.next2 != 0 && !c.onlyAcceptLeft(pos+st.next2) {
				return false
			}
		case StateGroupOpen:
		default:
			return false
		}
		if st.next1 == 0 {
			return false
		}
		pos += st.next1
	}
	return false
}

// disambiguateBranches lets a branch whose first atom cannot start the
// other branch jump there directly on mismatch instead of leaving a
// backtracking point.
func (c *Compiler) disambiguateBranches() {
	for pos := range c.states {
		st := &c.states[pos]
		if !st.isBranch() {
			continue
		}
		at := c.leadingAtom(pos+st.next1, pos+st.next2)
		if at < 0 {
			continue
		}
		set1, _ := c.atomSet(&c.states[at])
		var set2 charclass.RangeSet
		if c.gather(&set2, pos+st.next2, c.visited(), 0, true) {
			continue
		}
		if !set1.Overlaps(set2) {
			c.states[at].next2 = pos + st.next2 - at
			st.next2 = 0
		}
	}
}

// leadingAtom follows plain epsilons from pos to a char or class without an
// alternative successor, and returns its index or -1. The walk stays below
// limit, the start of the next alternative, so that an atom shared with
// other paths after the alternation is never picked.
func (c *Compiler) leadingAtom(pos, limit int) int {
	for pos > 0 && pos < limit {
		st := &c.states[pos]
		switch {
		case st.isCharOrClass():
			if st.next2 == 0 {
				return pos
			}
			return -1
		case st.kind == StateEpsilon && st.next2 == 0:
			pos += st.next1
		default:
			return -1
		}
	}
	return -1
}

// firstChars returns the code points a match can begin with, or every code
// point when a match may be empty. It gathers from the entry, so with a
// rewinder in front it describes the follow set of the leading loop.
func (c *Compiler) firstChars() charclass.RangeSet {
	var set charclass.RangeSet
	if c.gather(&set, c.states[0].next1, c.visited(), 0, false) {
		return fullRange()
	}
	return set
}

// skipEpsilons redirects successors past epsilons that have no
// alternative.
func (c *Compiler) skipEpsilons() {
	for i := range c.states {
		st := &c.states[i]
		if st.next1 != 0 {
			st.next1 = c.skipFrom(i+st.next1) - i
		}
		if st.next2 != 0 {
			st.next2 = c.skipFrom(i+st.next2) - i
		}
	}
}

// skipFrom returns the first state reached from pos that is not an epsilon
// without alternative. The walk is bounded by the state count, so a cycle of
// epsilons stops rather than spinning.
func (c *Compiler) skipFrom(pos int) int {
	for range c.states {
		st := &c.states[pos]
		if st.kind != StateEpsilon || st.next2 != 0 || st.next1 == 0 {
			break
		}
		pos += st.next1
	}
	return pos
}
