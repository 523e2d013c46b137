package nfa

import "github.com/coregx/ecmare/charclass"

// epsTag records why the compiler emitted an epsilon.
type epsTag uint8

const (
	tagNone epsTag = iota
	tagBranch
	tagGroup
	tagStar
)

// quant is a {min,max} quantifier, or a {min,max} width in code points.
type quant struct {
	min, max int
	greedy   bool
}

func (q quant) infinite() bool {
	return q.max == Infinite
}

// hasRange reports whether a group range {first,last} names at least one
// group.
func (q quant) hasRange() bool {
	return q.min <= q.max && q.max > 0
}

func satMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a == Infinite || b == Infinite || a > Infinite/b {
		return Infinite
	}
	return a * b
}

func satAdd(a, b int) int {
	if a == Infinite || b == Infinite || a > Infinite-b {
		return Infinite
	}
	return a + b
}

// node is a state under construction. Successors are offsets relative to
// the node's own index; 0 means none, except that next1 == 0 on a char or
// class node is a loop onto itself.
type node struct {
	kind  StateKind
	r     rune
	index int

	next1, next2 int

	q         quant
	negate    bool
	multiline bool
	mode      LookMode
	class     charclass.ID
	tag       epsTag

	// name is the unresolved group name of a \k<name> backreference.
	name string
}

func newNode(kind StateKind) node {
	return node{kind: kind, next1: 1, q: quant{1, 1, true}}
}

func (n *node) hasQuantifier() bool {
	return n.kind < StateLookaround
}

func (n *node) isCharOrClass() bool {
	return n.kind == StateChar || n.kind == StateClass
}

func (n *node) isBranch() bool {
	return n.kind == StateEpsilon && n.tag == tagBranch && n.next2 != 0
}

func (n *node) isGroupEpsilon() bool {
	return n.kind == StateEpsilon && n.tag == tagGroup
}
