package prefilter

import (
	"unicode/utf8"

	"github.com/coregx/ecmare/internal/ucd"
)

// BMH finds a literal with the Boyer-Moore-Horspool algorithm. It is a
// complete searcher: every hit is a match of the literal pattern, and the
// first hit is the leftmost one.
//
// Case-sensitive search runs over the UTF-8 bytes of the literal. Under
// case folding the literal's code points may be spelled with encodings of
// different lengths, so the shift table is keyed by the low byte of every
// case variant and measured in the shortest encoding of each position;
// candidates are verified by decoding the subject backwards and folding.
type BMH struct {
	runes    []rune
	needle   []byte
	foldCase bool

	// table[256] is the initial offset of the case-folding search.
	table [257]int
}

// NewBMH builds a searcher for the given code points. Under foldCase the
// runes must be canonical folds. Reports false for literals BMH cannot
// serve: fewer than two code points, or U+FFFD, which invalid input decodes
// to without containing its encoding.
func NewBMH(runes []rune, foldCase bool) (*BMH, bool) {
	if len(runes) < 2 {
		return nil, false
	}
	for _, r := range runes {
		if r == utf8.RuneError {
			return nil, false
		}
	}
	b := &BMH{runes: append([]rune(nil), runes...), foldCase: foldCase}
	if foldCase {
		b.setupFold()
	} else {
		b.setupExact()
	}
	return b, true
}

func (b *BMH) setupExact() {
	for _, r := range b.runes {
		b.needle = utf8.AppendRune(b.needle, r)
	}
	last := len(b.needle) - 1
	for i := range 256 {
		b.table[i] = len(b.needle)
	}
	for i := 0; i < last; i++ {
		b.table[b.needle[i]] = last - i
	}
}

func (b *BMH) setupFold() {
	last := len(b.runes) - 1
	minLen := make([]int, last)
	dist := 0
	for i := 0; i < last; i++ {
		shortest := b.runes[i]
		for _, v := range ucd.FoldSet(b.runes[i]) {
			shortest = min(shortest, v)
		}
		minLen[i] = utf8.RuneLen(shortest)
		dist += minLen[i]
	}

	for i := range 256 {
		b.table[i] = dist + 1
	}
	b.table[256] = dist
	for i := 0; i < last; i++ {
		for _, v := range ucd.FoldSet(b.runes[i]) {
			b.table[v&0xff] = dist
		}
		dist -= minLen[i]
	}
}

// FindMatch returns the span of the leftmost occurrence at or after start,
// or (-1, -1).
func (b *BMH) FindMatch(haystack []byte, start int) (start2, end int) {
	if start < 0 || start > len(haystack) {
		return -1, -1
	}
	if b.foldCase {
		return b.findFold(haystack, start)
	}
	return b.findExact(haystack, start)
}

func (b *BMH) findExact(haystack []byte, start int) (int, int) {
	last := len(b.needle) - 1
	lastByte := b.needle[last]
	for pos := start + last; pos < len(haystack); pos += b.table[haystack[pos]] {
		if haystack[pos] != lastByte {
			continue
		}
		i, j := last-1, pos-1
		for i >= 0 && haystack[j] == b.needle[i] {
			i--
			j--
		}
		if i < 0 {
			return pos - last, pos + 1
		}
	}
	return -1, -1
}

func (b *BMH) findFold(haystack []byte, start int) (int, int) {
	last := len(b.runes) - 1
	entry := b.runes[last]
	offset := b.table[256]

	for pos := start; len(haystack)-pos > offset; {
		pos += offset
		for !utf8.RuneStart(haystack[pos]) {
			pos++
			if pos == len(haystack) {
				return -1, -1
			}
		}

		c, w := utf8.DecodeRune(haystack[pos:])
		if c == entry || ucd.Fold(c) == entry {
			tail := pos
			i := last - 1
			for ; i >= 0 && tail > start; i-- {
				p, pw := utf8.DecodeLastRune(haystack[start:tail])
				if ucd.Fold(p) != b.runes[i] {
					break
				}
				tail -= pw
			}
			if i < 0 {
				return tail, pos + w
			}
		}
		offset = b.table[c&0xff]
	}
	return -1, -1
}

// Find implements Prefilter.Find.
func (b *BMH) Find(haystack []byte, start int) int {
	s, _ := b.FindMatch(haystack, start)
	return s
}

// IsComplete implements Prefilter.IsComplete.
func (b *BMH) IsComplete() bool {
	return true
}

// LiteralLen implements Prefilter.LiteralLen. Case-folded matches vary in
// length.
func (b *BMH) LiteralLen() int {
	if b.foldCase {
		return 0
	}
	return len(b.needle)
}

// HeapBytes implements Prefilter.HeapBytes.
func (b *BMH) HeapBytes() int {
	return len(b.needle) + 4*len(b.runes)
}
