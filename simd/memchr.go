// Package simd provides fast byte and substring scanning for prefilters.
//
// Single-byte search delegates to bytes.IndexByte, whose runtime
// implementation is vectorized on every major architecture. Multi-byte and
// table searches use SWAR (SIMD Within A Register) loops that process eight
// bytes per step. Substring search picks between the runtime's vectorized
// bytes.Index and a rare-byte scan depending on the CPU features reported by
// golang.org/x/sys/cpu.
package simd

import (
	"bytes"

	"golang.org/x/sys/cpu"
)

// vectorIndex reports whether bytes.Index runs a vectorized kernel for
// short needles on this CPU.
var vectorIndex = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// vectorIndexMaxLen is the longest needle the runtime kernel handles on
// every architecture that sets vectorIndex.
const vectorIndexMaxLen = 32

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack.
func Memchr(haystack []byte, needle byte) int {
	return bytes.IndexByte(haystack, needle)
}

// Memchr2 returns the index of the first instance of either needle1 or needle2
// in haystack, or -1 if neither is present.
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	if needle1 == needle2 {
		return bytes.IndexByte(haystack, needle1)
	}
	return memchr2Generic(haystack, needle1, needle2)
}

// Memchr3 returns the index of the first instance of needle1, needle2, or needle3
// in haystack, or -1 if none are present.
func Memchr3(haystack []byte, needle1, needle2, needle3 byte) int {
	return memchr3Generic(haystack, needle1, needle2, needle3)
}

// MemchrInTable returns the index of the first byte b of haystack with
// table[b] set, or -1.
//
// Example:
//
//	var digits [256]bool
//	for c := '0'; c <= '9'; c++ {
//	    digits[c] = true
//	}
//	pos := simd.MemchrInTable([]byte("abc123"), &digits) // 3
func MemchrInTable(haystack []byte, table *[256]bool) int {
	return memchrTableGeneric(haystack, table)
}
