package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack. An empty needle matches at 0.
//
// When the CPU lets the runtime vectorize bytes.Index, short needles go
// there. Otherwise the rarest byte of the needle (by ByteRank) is located
// with Memchr and every candidate is verified in full.
//
// Example:
//
//	pos := simd.Memmem([]byte("aaaaaabaaaa"), []byte("aab"))
//	// pos == 4
func Memmem(haystack, needle []byte) int {
	switch n := len(needle); {
	case n == 0:
		return 0
	case n > len(haystack):
		return -1
	case n == 1:
		return Memchr(haystack, needle[0])
	case vectorIndex && n <= vectorIndexMaxLen:
		return bytes.Index(haystack, needle)
	}
	return memmemRare(haystack, needle)
}

// memmemRare scans for the rarest needle byte and verifies around it.
func memmemRare(haystack, needle []byte) int {
	switch {
	case len(needle) == 0:
		return 0
	case len(needle) > len(haystack):
		return -1
	}
	rare, off := RareByte(needle)
	last := len(haystack) - len(needle)

	for at := off; at < len(haystack); {
		i := Memchr(haystack[at:], rare)
		if i < 0 {
			return -1
		}
		start := at + i - off
		if start > last {
			return -1
		}
		if bytes.Equal(haystack[start:start+len(needle)], needle) {
			return start
		}
		at += i + 1
	}
	return -1
}
