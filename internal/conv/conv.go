// Package conv provides checked integer narrowing for automaton and class
// table indices.
//
// The helpers panic on overflow: callers bound their inputs (pattern size,
// class count), so an out-of-range value is an internal bug.
package conv

import "math"

// IntToUint32 converts n to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

