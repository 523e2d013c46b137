package nfa

import (
	"strings"

	"github.com/coregx/ecmare/charclass"
	"github.com/coregx/ecmare/internal/ucd"
)

// quantifier parses *, +, ?, {m}, {m,} or {m,n}, each optionally followed
// by ? for lazy matching. It reports false when no quantifier follows.
func (c *Compiler) quantifier() (quant, bool, error) {
	q := quant{1, 1, true}
	switch c.peek() {
	case '*':
		q.min, q.max = 0, Infinite
	case '+':
		q.max = Infinite
	case '?':
		q.min = 0
	case '{':
		c.pos++
		lo, ok := c.decimal()
		if !ok {
			return q, false, c.errorf(ErrorBrace, "")
		}
		q.min, q.max = lo, lo
		if c.lookingAt(',') {
			c.pos++
			if c.lookingAt('}') {
				q.max = Infinite
			} else if q.max, ok = c.decimal(); !ok {
				return q, false, c.errorf(ErrorBrace, "")
			}
		}
		if !c.lookingAt('}') {
			return q, false, c.errorf(ErrorBrace, "")
		}
		if q.min > q.max {
			return q, false, c.errorf(ErrorBadBrace, "")
		}
	default:
		return q, false, nil
	}
	c.pos++
	if c.lookingAt('?') {
		c.pos++
		q.greedy = false
	}
	return q, true, nil
}

// decimal reads a run of digits. Values past Infinite saturate to it, so
// oversized bounds behave as unbounded.
func (c *Compiler) decimal() (int, bool) {
	v, digits := 0, 0
	for !c.eof() {
		r := c.peek()
		if r < '0' || r > '9' {
			break
		}
		if d := int(r - '0'); v > (Infinite-d)/10 {
			v = Infinite
		} else {
			v = v*10 + d
		}
		digits++
		c.pos++
	}
	return v, digits > 0
}

// bracket parses a class after its opening [.
func (c *Compiler) bracket() (node, error) {
	var set charclass.RangeSet
	negated := c.lookingAt('^')
	if negated {
		c.pos++
	}
	for {
		if c.eof() {
			return node{}, c.errorf(ErrorBrack, "")
		}
		if c.peek() == ']' {
			c.pos++
			break
		}
		lo, loSet, loClass, err := c.classAtom()
		if err != nil {
			return node{}, err
		}
		if c.lookingAt('-') && c.pos+1 < len(c.src) && c.src[c.pos+1] != ']' {
			c.pos++
			hi, hiSet, hiClass, err := c.classAtom()
			if err != nil {
				return node{}, err
			}
			// A class escape at either end leaves the dash literal: [\d-z]
			// is digits, '-' and 'z'.
			if loClass || hiClass {
				addClassAtom(&set, lo, loSet, loClass)
				set.AddRune('-')
				addClassAtom(&set, hi, hiSet, hiClass)
				continue
			}
			if lo > hi {
				return node{}, c.errorf(ErrorRange, "")
			}
			set.Add(lo, hi)
			continue
		}
		addClassAtom(&set, lo, loSet, loClass)
	}
	if c.icase {
		set = set.CaseUnfold()
	}
	if negated {
		set = set.Negate()
	}
	return c.charOrClass(set), nil
}

func addClassAtom(set *charclass.RangeSet, r rune, cls charclass.RangeSet, isClass bool) {
	if isClass {
		set.Merge(cls)
	} else {
		set.AddRune(r)
	}
}

// charOrClass emits a char node when set stands for a single code point
// (or a single fold set under case-insensitive matching).
func (c *Compiler) charOrClass(set charclass.RangeSet) node {
	if r, ok := set.SingleRune(c.icase); ok {
		n := newNode(StateChar)
		n.r = r
		return n
	}
	n := newNode(StateClass)
	n.class = c.reg.Register(set)
	return n
}

// classAtom parses one member of a bracket class.
func (c *Compiler) classAtom() (rune, charclass.RangeSet, bool, error) {
	r := c.next()
	if r != '\\' {
		return r, charclass.RangeSet{}, false, nil
	}
	if c.eof() {
		return 0, charclass.RangeSet{}, false, c.errorf(ErrorEscape, "trailing backslash")
	}
	switch e := c.next(); e {
	case 'b':
		return '\b', charclass.RangeSet{}, false, nil
	case '-':
		return '-', charclass.RangeSet{}, false, nil
	case 'd', 'D', 's', 'S', 'w', 'W', 'p', 'P':
		set, err := c.classEscape(e)
		return 0, set, true, err
	default:
		r, err := c.charEscape(e)
		return r, charclass.RangeSet{}, false, err
	}
}

// classEscape resolves \d \D \s \S \w \W \p{...} \P{...}.
func (c *Compiler) classEscape(e rune) (charclass.RangeSet, error) {
	var set charclass.RangeSet
	switch e {
	case 'd', 'D':
		set = charclass.Predefined(charclass.Digit)
	case 's', 'S':
		set = charclass.Predefined(charclass.Space)
	case 'w', 'W':
		if c.icase {
			set = charclass.Predefined(charclass.FoldWord)
		} else {
			set = charclass.Predefined(charclass.Word)
		}
	case 'p', 'P':
		var err error
		if set, err = c.property(); err != nil {
			return set, err
		}
	}
	if e == 'D' || e == 'S' || e == 'W' || e == 'P' {
		set = set.Negate()
	}
	return set, nil
}

// property parses {name} or {name=value} after \p or \P.
func (c *Compiler) property() (charclass.RangeSet, error) {
	if !c.lookingAt('{') {
		return charclass.RangeSet{}, c.errorf(ErrorEscape, "expected { after \\p")
	}
	c.pos++
	name := c.propertyWord()
	value := ""
	if c.lookingAt('=') {
		c.pos++
		value = c.propertyWord()
	}
	if !c.lookingAt('}') {
		return charclass.RangeSet{}, c.errorf(ErrorEscape, "unterminated property")
	}
	c.pos++
	id, err := c.reg.LookupProperty(name, value)
	if err != nil {
		return charclass.RangeSet{}, c.errorf(ErrorProperty, err.Error())
	}
	return c.reg.Class(id), nil
}

func (c *Compiler) propertyWord() string {
	var b strings.Builder
	for !c.eof() {
		r := c.peek()
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			break
		}
		b.WriteRune(r)
		c.pos++
	}
	return b.String()
}

// charEscape resolves an escape that stands for a single code point.
func (c *Compiler) charEscape(e rune) (rune, error) {
	switch e {
	case 't':
		return '\t', nil
	case 'n':
		return '\n', nil
	case 'v':
		return '\v', nil
	case 'f':
		return '\f', nil
	case 'r':
		return '\r', nil
	case 'c':
		if !c.eof() {
			if r := c.peek(); r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
				c.pos++
				return r & 0x1f, nil
			}
		}
		return 0, c.errorf(ErrorEscape, "invalid control escape")
	case '0':
		if !c.eof() && c.peek() >= '0' && c.peek() <= '9' {
			return 0, c.errorf(ErrorEscape, "octal escapes are not supported")
		}
		return 0, nil
	case 'x':
		v, ok := c.hex(2)
		if !ok {
			return 0, c.errorf(ErrorEscape, "invalid \\x escape")
		}
		return v, nil
	case 'u':
		return c.unicodeEscape()
	case '^', '$', '\\', '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|', '/':
		return e, nil
	}
	c.pos--
	return 0, c.errorf(ErrorEscape, "")
}

func (c *Compiler) hex(n int) (rune, bool) {
	if c.pos+n > len(c.src) {
		return 0, false
	}
	var v rune
	for i := 0; i < n; i++ {
		d, ok := hexDigit(c.src[c.pos+i])
		if !ok {
			return 0, false
		}
		v = v<<4 | d
	}
	c.pos += n
	return v, true
}

func hexDigit(r rune) (rune, bool) {
	switch {
	case r >= '0' && r <= '9':
		return r - '0', true
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10, true
	case r >= 'A' && r <= 'F':
		return r - 'A' + 10, true
	}
	return 0, false
}

// unicodeEscape parses what follows \u: XXXX, a surrogate pair written as
// two \uXXXX escapes, or {X...}.
func (c *Compiler) unicodeEscape() (rune, error) {
	if c.lookingAt('{') {
		c.pos++
		var v rune
		digits := 0
		for !c.eof() {
			d, ok := hexDigit(c.peek())
			if !ok {
				break
			}
			v = v<<4 | d
			if v > ucd.MaxRune {
				return 0, c.errorf(ErrorEscape, "code point out of range")
			}
			digits++
			c.pos++
		}
		if digits == 0 || !c.lookingAt('}') {
			return 0, c.errorf(ErrorEscape, "invalid \\u{...} escape")
		}
		c.pos++
		return v, nil
	}
	v, ok := c.hex(4)
	if !ok {
		return 0, c.errorf(ErrorEscape, "invalid \\u escape")
	}
	if v >= 0xD800 && v <= 0xDBFF && c.pos+6 <= len(c.src) && c.src[c.pos] == '\\' && c.src[c.pos+1] == 'u' {
		save := c.pos
		c.pos += 2
		if lo, ok := c.hex(4); ok && lo >= 0xDC00 && lo <= 0xDFFF {
			return 0x10000 + (v-0xD800)<<10 + (lo - 0xDC00), nil
		}
		c.pos = save
	}
	return v, nil
}

// groupName reads an identifier up to the closing >.
func (c *Compiler) groupName(kind ErrorKind) (string, error) {
	var b strings.Builder
	for {
		if c.eof() {
			return "", c.errorf(kind, "unterminated group name")
		}
		r := c.next()
		if r == '>' {
			break
		}
		if r == '\\' {
			if !c.lookingAt('u') {
				return "", c.errorf(kind, "invalid group name")
			}
			c.pos++
			var err error
			if r, err = c.unicodeEscape(); err != nil {
				return "", err
			}
		}
		var ok bool
		if b.Len() == 0 {
			ok = r == '$' || r == '_' || ucd.IsIDStart(r)
		} else {
			ok = r == '$' || r == 0x200C || r == 0x200D || ucd.IsIDContinue(r)
		}
		if !ok {
			return "", c.errorf(kind, "invalid group name")
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "", c.errorf(kind, "empty group name")
	}
	return b.String(), nil
}

// atomEscape parses an escape outside brackets.
func (c *Compiler) atomEscape() ([]node, quant, error) {
	one := quant{1, 1, true}
	if c.eof() {
		return nil, one, c.errorf(ErrorEscape, "trailing backslash")
	}
	e := c.next()
	switch {
	case e == 'b' || e == 'B':
		n := newNode(StateWordBoundary)
		n.class = charclass.Word
		if c.icase {
			n.class = charclass.FoldWord
		}
		n.negate = e == 'B'
		n.q = quant{0, 0, true}
		return []node{n}, n.q, nil

	case e == 'k':
		if !c.lookingAt('<') {
			return nil, one, c.errorf(ErrorEscape, "expected < after \\k")
		}
		c.pos++
		name, err := c.groupName(ErrorEscape)
		if err != nil {
			return nil, one, err
		}
		n := newNode(StateBackref)
		n.name = name
		n.next2 = 1
		return []node{n}, quant{0, Infinite, true}, nil

	case e >= '1' && e <= '9':
		c.pos--
		v, _ := c.decimal()
		n := newNode(StateBackref)
		n.index = v
		n.next2 = 1
		return []node{n}, quant{0, Infinite, true}, nil

	case e == 'd' || e == 'D' || e == 's' || e == 'S' || e == 'w' || e == 'W' || e == 'p' || e == 'P':
		set, err := c.classEscape(e)
		if err != nil {
			return nil, one, err
		}
		if c.icase {
			set = set.CaseUnfold()
		}
		return []node{c.charOrClass(set)}, one, nil
	}

	r, err := c.charEscape(e)
	if err != nil {
		return nil, one, err
	}
	n := newNode(StateChar)
	n.r = c.fold(r)
	return []node{n}, one, nil
}
