package simd

import (
	"encoding/binary"
	"math/bits"
)

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// zeroBytes flags the zero bytes of v in their high bits (Hacker's Delight).
// Borrows may flag bytes above the first zero, so only the lowest flag is
// reliable.
func zeroBytes(v uint64) uint64 {
	return (v - lo8) & ^v & hi8
}

// memchr2Generic searches for two bytes at once, 8 bytes per step, using
// SWAR (SIMD Within A Register).
func memchr2Generic(haystack []byte, needle1, needle2 byte) int {
	mask1 := uint64(needle1) * lo8
	mask2 := uint64(needle2) * lo8

	idx := 0
	for ; idx+8 <= len(haystack); idx += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[idx:])
		// Either flag set may be polluted above its own first zero, but
		// the lowest bit of the union is the first real match.
		if found := zeroBytes(chunk^mask1) | zeroBytes(chunk^mask2); found != 0 {
			return idx + bits.TrailingZeros64(found)/8
		}
	}
	for ; idx < len(haystack); idx++ {
		if b := haystack[idx]; b == needle1 || b == needle2 {
			return idx
		}
	}
	return -1
}

// memchr3Generic is memchr2Generic with a third needle.
func memchr3Generic(haystack []byte, needle1, needle2, needle3 byte) int {
	mask1 := uint64(needle1) * lo8
	mask2 := uint64(needle2) * lo8
	mask3 := uint64(needle3) * lo8

	idx := 0
	for ; idx+8 <= len(haystack); idx += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[idx:])
		found := zeroBytes(chunk^mask1) | zeroBytes(chunk^mask2) | zeroBytes(chunk^mask3)
		if found != 0 {
			return idx + bits.TrailingZeros64(found)/8
		}
	}
	for ; idx < len(haystack); idx++ {
		if b := haystack[idx]; b == needle1 || b == needle2 || b == needle3 {
			return idx
		}
	}
	return -1
}

// memchrTableGeneric returns the first byte whose table entry is set,
// unrolled by eight.
func memchrTableGeneric(haystack []byte, table *[256]bool) int {
	idx := 0
	for ; idx+8 <= len(haystack); idx += 8 {
		h := haystack[idx : idx+8 : idx+8]
		if table[h[0]] || table[h[1]] || table[h[2]] || table[h[3]] ||
			table[h[4]] || table[h[5]] || table[h[6]] || table[h[7]] {
			break
		}
	}
	for ; idx < len(haystack); idx++ {
		if table[haystack[idx]] {
			return idx
		}
	}
	return -1
}
