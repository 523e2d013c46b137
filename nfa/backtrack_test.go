package nfa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captures compiles pattern and returns the capture spans of the leftmost
// match in input, or nil.
func captures(t *testing.T, pattern string, flags Flags, input string, mflags MatchFlags) []int {
	t.Helper()
	n, err := Compile(pattern, flags)
	require.NoError(t, err, pattern)
	s := NewSearchState(n)
	ok, err := NewBacktracker(n, 0).Search(s, []byte(input), 0, 0, mflags)
	require.NoError(t, err, pattern)
	if !ok {
		return nil
	}
	return s.AppendCaptures(nil)
}

func TestSearch(t *testing.T) {
	tests := []struct {
		pattern string
		flags   Flags
		input   string
		want    []int
	}{
		{`abc`, 0, "xxabcxx", []int{2, 5}},
		{`abc`, 0, "ab", nil},
		{``, 0, "abc", []int{0, 0}},
		{`a|b`, 0, "cb", []int{1, 2}},
		{`ab|ac`, 0, "zac", []int{1, 3}},
		{`(?:a|ab)c`, 0, "abc", []int{0, 3}},
		{`(?:a|ab)c`, 0, "abbc", nil},
		{`foo|bar|baz`, 0, "xxbaz", []int{2, 5}},

		// quantifiers
		{`a*`, 0, "aaa", []int{0, 3}},
		{`a*`, 0, "baa", []int{0, 0}},
		{`a*?`, 0, "aaa", []int{0, 0}},
		{`a+?`, 0, "aaa", []int{0, 1}},
		{`a??b`, 0, "ab", []int{0, 2}},
		{`a{2,3}`, 0, "aaaa", []int{0, 3}},
		{`a{2}`, 0, "a", nil},
		{`a{0}b`, 0, "ab", []int{1, 2}},
		{`a{2,}`, 0, "caaaa", []int{1, 5}},
		{`a{7}`, 0, "aaaaaaaa", []int{0, 7}},
		{`a{0,99999999999}`, 0, "baaa", []int{0, 0}},
		{`ba{1,99999999999}`, 0, "baaa", []int{0, 4}},
		{`a{2147483648,}`, 0, "aaa", nil},
		{`(?:ab){2}`, 0, "ababab", []int{0, 4}},
		{`(?:ab){2,}?`, 0, "ababab", []int{0, 4}},
		{`(?:ab)+`, 0, "xababa", []int{1, 5}},
		{`a*ab`, 0, "aaab", []int{0, 4}},
		{`[a-z]*z`, 0, "abzzc", []int{0, 4}},
		{`x*`, 0, "", []int{0, 0}},

		// groups
		{`(a)|b`, 0, "b", []int{0, 1, -1, -1}},
		{`(a)*`, 0, "aa", []int{0, 2, 1, 2}},
		{`(a*)*`, 0, "b", []int{0, 0, 0, 0}},
		{`(a*)+`, 0, "b", []int{0, 0, 0, 0}},
		{`(?:(a)|b)+`, 0, "ab", []int{0, 2, -1, -1}},
		{`(z)((a+)?(b+)?(c))*`, 0, "zaacbbbcac", []int{0, 10, 0, 1, 8, 10, 8, 9, -1, -1, 9, 10}},
		{`(a)(?:b)(c)`, 0, "abc", []int{0, 3, 0, 1, 2, 3}},
		{`((a)|b)+`, 0, "ab", []int{0, 2, 1, 2, -1, -1}},

		// backreferences
		{`(a)\1`, 0, "aa", []int{0, 2, 0, 1}},
		{`(a)\1`, 0, "ab", nil},
		{`\1(a)`, 0, "a", []int{0, 1, 0, 1}},
		{`(a\1)`, 0, "a", []int{0, 1, 0, 1}},
		{`(a)\1`, FlagIgnoreCase, "aA", []int{0, 2, 0, 1}},
		{`(?<x>b)\k<x>`, 0, "abb", []int{1, 3, 1, 2}},
		{`(a*)b\1`, 0, "aabaa", []int{0, 5, 0, 2}},
		{`(a)|\1b`, 0, "b", []int{0, 1, -1, -1}},
		{`(a)|\1{1,3}b`, 0, "xb", []int{1, 2, -1, -1}},
		{`(a)|\1{2,5}b`, 0, "xb", []int{1, 2, -1, -1}},
		{`(a\1*)`, 0, "aab", []int{0, 1, 0, 1}},
		{`(\1{2,})`, 0, "abc", []int{0, 0, 0, 0}},
		{`(a\1{2,}b)`, 0, "xab", []int{1, 3, 1, 3}},

		// lookaround
		{`a(?=b)`, 0, "acab", []int{2, 3}},
		{`a(?!b)`, 0, "abac", []int{2, 3}},
		{`(?=(a))a`, 0, "a", []int{0, 1, 0, 1}},
		{`(?!(a))b`, 0, "b", []int{0, 1, -1, -1}},
		{`(?=(a+))a*b\1`, 0, "baaabac", []int{3, 6, 3, 4}},
		{`(?<=\$)\d+`, 0, "cost $42", []int{6, 8}},
		{`(?<!\$)\b\d+`, 0, "$4 25", []int{3, 5}},
		{`(?<=(\d+)(\d+))$`, 0, "1053", []int{4, 4, 0, 1, 1, 4}},
		{`(?<=\1(a))b`, 0, "aab", []int{2, 3, 1, 2}},
		{`(?<=ab|b)c`, 0, "xbc", []int{2, 3}},

		// assertions
		{`\bfoo\b`, 0, "a foo b", []int{2, 5}},
		{`\bfoo\b`, 0, "afoo", nil},
		{`\Boo`, 0, "foo", []int{1, 3}},
		{`^b`, 0, "ab", nil},
		{`^b`, FlagMultiline, "a\nb", []int{2, 3}},
		{`a$`, FlagMultiline, "a\nb", []int{0, 1}},
		{`a$`, 0, "a\nb", nil},
		{`^$`, 0, "", []int{0, 0}},
		{`(?:^)+a`, 0, "ab", []int{0, 1}},
		{`(?:^)+a`, 0, "ba", nil},
		{`(?:\b)*x`, 0, "a x", []int{2, 3}},
		{`(?:$)?`, 0, "ab", []int{0, 0}},
		{`(?:$)+`, 0, "ab", []int{2, 2}},

		// characters and classes
		{`a.c`, 0, "a\nc", nil},
		{`a.c`, FlagDotAll, "a\nc", []int{0, 3}},
		{`a.c`, 0, "aéc", []int{0, 4}},
		{`[a-c]+`, 0, "xxbcay", []int{2, 5}},
		{`[^a-c]+`, 0, "abxyc", []int{2, 4}},
		{`[a-c]+`, FlagIgnoreCase, "xBCa", []int{1, 4}},
		{`[\d-z]+`, 0, "a-9z", []int{1, 4}},
		{`[a-\d]+`, 0, "z-a5", []int{1, 4}},
		{`[]`, 0, "a", nil},
		{`[^]`, 0, "\n", []int{0, 1}},
		{`\p{Lu}+`, 0, "abcDEFg", []int{3, 6}},
		{`\P{L}`, 0, "ab1", []int{2, 3}},
		{`\u{1F600}`, 0, "x😀", []int{1, 5}},
		{`😀`, 0, "😀", []int{0, 4}},
		{`\x41B\cJ`, 0, "AB\n", []int{0, 3}},
		{`k`, FlagIgnoreCase, "\u212A", []int{0, 3}},
		{`\w+`, FlagIgnoreCase, "\u017F", []int{0, 2}},
		{`[^k]`, FlagIgnoreCase, "\u212AKx", []int{4, 5}},
		{`\d+\.\d+`, 0, "v1.25", []int{1, 5}},

		// rewritten loops
		{`\w+@\w+`, 0, "foo bar@baz", []int{4, 11}},
		{`\w+@`, 0, "a b", nil},
		{`[a-z]+ing`, 0, "singing", []int{0, 7}},
		{`a+b`, 0, "aaacaab", []int{4, 7}},
		{`\s+$`, 0, "a  \t", []int{1, 4}},
		{`\w+@\w+\.\w+`, 0, "me@host.io next", []int{0, 10}},
		{`\s*[,;]\s*`, 0, "a , b;c", []int{1, 4}},
		{`[a-z]+\d`, 0, "a1 b22", []int{0, 2}},
		{`[bc]*d`, 0, "abcd", []int{1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.flags.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, captures(t, tt.pattern, tt.flags, tt.input, 0))
		})
	}
}

func TestMatchFlags(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		flags   MatchFlags
		want    []int
	}{
		{"continuous miss", `b`, "ab", Continuous, nil},
		{"continuous hit", `a`, "ab", Continuous, []int{0, 1}},
		{"not null", `a*`, "bab", NotNull, []int{1, 2}},
		{"match at end", `a+`, "baa", MatchAtEnd, []int{1, 3}},
		{"match at end miss", `a+`, "aab", MatchAtEnd, nil},
		{"not bol", `^a`, "a", NotBOL, nil},
		{"not eol", `a$`, "a", NotEOL, nil},
		{"not bow", `\ba`, "a", NotBOW, nil},
		{"not eow", `a\b`, "a", NotEOW, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, captures(t, tt.pattern, 0, tt.input, tt.flags))
		})
	}
}

func TestSearchFromOffset(t *testing.T) {
	n := MustCompile(`(?<=x)a`, 0)
	bt := NewBacktracker(n, 0)
	s := NewSearchState(n)

	ok, err := bt.Search(s, []byte("xa"), 1, 1, 0)
	require.NoError(t, err)
	assert.False(t, ok, "lookbehind must not see past the limit")

	ok, err = bt.Search(s, []byte("xa"), 1, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	start, end, ok := s.Group(0)
	assert.True(t, ok)
	assert.Equal(t, 1, start)
	assert.Equal(t, 2, end)

	n = MustCompile(`^a`, 0)
	bt = NewBacktracker(n, 0)
	s = NewSearchState(n)
	ok, err = bt.Search(s, []byte("ba"), 1, 1, 0)
	require.NoError(t, err)
	assert.True(t, ok, "the limit is a line start")
	ok, err = bt.Search(s, []byte("ba"), 1, 1, PrevAvail)
	require.NoError(t, err)
	assert.False(t, ok, "PrevAvail exposes the preceding b")
}

func TestSearchComplexity(t *testing.T) {
	n := MustCompile(`(a+)+b`, 0)
	bt := NewBacktracker(n, 1000)
	s := NewSearchState(n)
	_, err := bt.Search(s, []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 0, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrorComplexity)
	assert.ErrorIs(t, err, ErrComplexity)

	ok, err := bt.Search(s, []byte("aab"), 0, 0, 0)
	require.NoError(t, err, "the automaton stays usable")
	assert.True(t, ok)
}

func TestSearchStackLimit(t *testing.T) {
	n := MustCompile(`(?:a|ab)*c`, 0)
	bt := NewBacktracker(n, 0)
	bt.SetMaxStack(64)
	s := NewSearchState(n)
	_, err := bt.Search(s, []byte(strings.Repeat("ab", 200)), 0, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrorStack)
	assert.ErrorIs(t, err, ErrStack)

	ok, err := bt.Search(s, []byte("abc"), 0, 0, 0)
	require.NoError(t, err, "the automaton stays usable")
	assert.True(t, ok)

	bt.SetMaxStack(0)
	_, err = bt.Search(s, []byte(strings.Repeat("ab", 200)), 0, 0, 0)
	assert.NoError(t, err, "zero restores the default limit")
}

func TestSearchStateReuse(t *testing.T) {
	n := MustCompile(`(\d+)-(\d+)?`, 0)
	bt := NewBacktracker(n, 0)
	s := NewSearchState(n)

	ok, err := bt.Search(s, []byte("12-34"), 0, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{0, 5, 0, 2, 3, 5}, s.AppendCaptures(nil))

	ok, err = bt.Search(s, []byte("7-"), 0, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{0, 2, 0, 1, -1, -1}, s.AppendCaptures(nil))
	_, _, ok = s.Group(2)
	assert.False(t, ok)
	_, _, ok = s.Group(9)
	assert.False(t, ok)
}

func BenchmarkSearchLiteralTail(b *testing.B) {
	n := MustCompile(`\w+@\w+\.com`, 0)
	bt := NewBacktracker(n, 0)
	s := NewSearchState(n)
	input := []byte("contact list: nobody here, but then someone@example.com appears")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bt.Search(s, input, 0, 0, 0)
	}
}
