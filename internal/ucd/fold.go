package ucd

import (
	"slices"
	"sync"
	"unicode"
)

// Fold returns the canonical case-fold representative of r: the smallest
// code point of its simple case-folding orbit. Two code points match
// case-insensitively exactly when their Fold values are equal.
func Fold(r rune) rune {
	if r < 0x80 {
		if 'a' <= r && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}
	m := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < m {
			m = f
		}
	}
	return m
}

// FoldSet returns the sorted case-fold orbit of r, r included.
func FoldSet(r rune) []rune {
	set := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		set = append(set, f)
	}
	slices.Sort(set)
	return set
}

// FoldSetSize returns len(FoldSet(r)) without allocating.
func FoldSetSize(r rune) int {
	n := 1
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		n++
	}
	return n
}

var foldables struct {
	once  sync.Once
	runes []rune
}

// Foldables returns the sorted code points whose fold orbit has more than one
// member. The slice is shared and must not be modified.
func Foldables() []rune {
	foldables.once.Do(func() {
		seen := make(map[rune]struct{})
		for _, cr := range unicode.CaseRanges {
			for c := rune(cr.Lo); c <= rune(cr.Hi); c++ {
				if unicode.SimpleFold(c) == c {
					continue
				}
				for _, m := range FoldSet(c) {
					seen[m] = struct{}{}
				}
			}
		}
		runes := make([]rune, 0, len(seen))
		for c := range seen {
			runes = append(runes, c)
		}
		slices.Sort(runes)
		foldables.runes = runes
	})
	return foldables.runes
}

// FoldablesIn returns the foldable code points within [lo, hi].
func FoldablesIn(lo, hi rune) []rune {
	all := Foldables()
	i, _ := slices.BinarySearch(all, lo)
	j, _ := slices.BinarySearch(all, hi+1)
	return all[i:j]
}
