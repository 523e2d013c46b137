package nfa

import (
	"unicode/utf8"

	"github.com/coregx/ecmare/charclass"
)

// FirstByteSet represents the set of bytes that can start a match.
// Used for O(1) early rejection of start positions.
type FirstByteSet struct {
	// bytes is a 256-entry lookup table for O(1) membership test
	bytes [256]bool
	// count is the number of valid first bytes (0-256)
	count int
}

// NewFirstByteSet returns the UTF-8 lead bytes of the code points in set.
// When set holds U+FFFD every non-ASCII byte is included, since invalid
// input decodes to U+FFFD one byte at a time.
func NewFirstByteSet(set charclass.RangeSet) *FirstByteSet {
	f := &FirstByteSet{}
	for _, r := range set.Ranges() {
		f.addRange(r.Lo, r.Hi)
	}
	if set.Contains(utf8.RuneError) {
		f.mark(0x80, 0xFF)
	}
	return f
}

// utf8Segments are the code point ranges sharing an encoded length.
var utf8Segments = [...]struct {
	lo, hi rune
	shift  uint
	prefix byte
}{
	{0, 0x7F, 0, 0},
	{0x80, 0x7FF, 6, 0xC0},
	{0x800, 0xFFFF, 12, 0xE0},
	{0x10000, utf8.MaxRune, 18, 0xF0},
}

// addRange marks the UTF-8 lead bytes of every code point in [lo, hi]. Each
// encoding length is handled separately; within one length the lead byte is
// monotonic in the code point, so marking the span between the two
// endpoint leads is exact.
func (f *FirstByteSet) addRange(lo, hi rune) {
	for _, seg := range utf8Segments {
		a, b := max(lo, seg.lo), min(hi, seg.hi)
		if a > b {
			continue
		}
		if seg.shift == 0 {
			f.mark(byte(a), byte(b))
			continue
		}
		f.mark(seg.prefix|byte(a>>seg.shift), seg.prefix|byte(b>>seg.shift))
	}
}

// mark adds the bytes lo..hi, keeping count in sync.
func (f *FirstByteSet) mark(lo, hi byte) {
	for b := int(lo); b <= int(hi); b++ {
		if !f.bytes[b] {
			f.bytes[b] = true
			f.count++
		}
	}
}

// Contains returns true if b can be the first byte of a match.
func (f *FirstByteSet) Contains(b byte) bool {
	return f.bytes[b]
}

// Count returns the number of possible first bytes.
func (f *FirstByteSet) Count() int {
	return f.count
}

// Bytes returns the member bytes in increasing order.
func (f *FirstByteSet) Bytes() []byte {
	out := make([]byte, 0, f.count)
	for b := range f.bytes {
		if f.bytes[b] {
			out = append(out, byte(b))
		}
	}
	return out
}

// IsUseful returns true if this set can reject start positions.
// Returns false when every byte is a possible start.
func (f *FirstByteSet) IsUseful() bool {
	return f.count < 256
}
