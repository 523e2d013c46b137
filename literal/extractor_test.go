package literal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/ecmare/nfa"
)

func extract(t *testing.T, pattern string, flags nfa.Flags) *Seq {
	t.Helper()
	n, err := nfa.Compile(pattern, flags)
	require.NoError(t, err)
	return New(DefaultConfig()).ExtractPrefixes(n)
}

type lit struct {
	s        string
	complete bool
}

func literals(seq *Seq) []lit {
	var out []lit
	for i := 0; i < seq.Len(); i++ {
		l := seq.Get(i)
		out = append(out, lit{string(l.Bytes), l.Complete})
	}
	return out
}

func TestExtractPrefixes(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		flags   nfa.Flags
		want    []lit
	}{
		{"literal", `abc`, 0, []lit{{"abc", true}}},
		{"alternation", `foo|bar`, 0, []lit{{"foo", true}, {"bar", true}}},
		{"shared prefix", `abc|abd`, 0, []lit{{"abc", true}, {"abd", true}}},
		{"small class", `[xy]z`, 0, []lit{{"xz", true}, {"yz", true}}},
		{"class then more", `[xy]z\w+`, 0, []lit{{"xz", false}, {"yz", false}}},
		{"capture group", `(a)b`, 0, []lit{{"ab", false}}},
		{"no subs", `(a)b`, nfa.FlagNoSubs, []lit{{"ab", true}}},
		{"lookahead", `abc(?=d)`, 0, []lit{{"abc", false}}},
		{"trailing assertion", `abc$`, 0, []lit{{"abc", false}}},
		{"fixed repeat", `ab{3}`, 0, []lit{{"abbb", true}}},
		{"multibyte", `héllo`, 0, []lit{{"héllo", true}}},
		{"icase without variants", `12`, nfa.FlagIgnoreCase, []lit{{"12", true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := extract(t, tt.pattern, tt.flags)
			require.NotNil(t, seq)
			assert.ElementsMatch(t, tt.want, literals(seq))
		})
	}
}

func TestExtractPrefixesFoldCase(t *testing.T) {
	seq := extract(t, `k`, nfa.FlagIgnoreCase)
	require.NotNil(t, seq)
	assert.ElementsMatch(t, []lit{{"K", true}, {"k", true}, {"\u212A", true}}, literals(seq))
	assert.True(t, seq.IsPrefixFree())
}

func TestExtractPrefixesNone(t *testing.T) {
	patterns := []string{
		`.*foo`,
		`a*`,
		`^abc`,
		`\bfoo`,
		`(?:)`,
		`[a-z]+`,
		`\d`,
		`(?<=x)a`,
		`a|`,
	}
	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			if p == `\d` {
				// Ten code points fit the class limit; a nine-rune limit
				// must refuse the class.
				n := nfa.MustCompile(p, 0)
				cfg := DefaultConfig()
				cfg.MaxClassSize = 9
				assert.Nil(t, New(cfg).ExtractPrefixes(n))
				return
			}
			assert.Nil(t, extract(t, p, 0))
		})
	}
}

func TestExtractorLimits(t *testing.T) {
	n := nfa.MustCompile(`a|b|c`, 0)

	cfg := DefaultConfig()
	cfg.MaxLiterals = 2
	assert.Nil(t, New(cfg).ExtractPrefixes(n))

	cfg.MaxLiterals = 3
	assert.Equal(t, 3, New(cfg).ExtractPrefixes(n).Len())

	n = nfa.MustCompile(`abcdef`, 0)
	cfg = DefaultConfig()
	cfg.MaxLiteralLen = 3
	seq := New(cfg).ExtractPrefixes(n)
	require.NotNil(t, seq)
	assert.Equal(t, []lit{{"abc", false}}, literals(seq))
}

// Every match must start with one of the extracted literals, and an all
// complete set must describe the matched text exactly.
func TestExtractPrefixesSound(t *testing.T) {
	patterns := []struct {
		pattern string
		flags   nfa.Flags
	}{
		{`foo|foobar`, 0},
		{`a+b`, 0},
		{`(?:ab|cd)+x`, 0},
		{`colou?r`, 0},
		{`x(?:y|z)*w`, 0},
		{`[ab]c?d`, 0},
		{`(a|b)\1`, 0},
		{`hello`, nfa.FlagIgnoreCase},
		{`(?:get|post)/`, nfa.FlagIgnoreCase},
		{`a{2,4}b`, 0},
		{`ab(?!c)`, 0},
	}
	inputs := []string{
		"foobar", "xxfoo", "aaab", "b", "ababx", "cdx", "color", "colour",
		"xyzw", "xw", "acd", "bd", "aa", "bb", "HeLLo", "POST/", "Get/",
		"aaaab", "ab", "abc", "aaaaaab",
	}

	for _, p := range patterns {
		t.Run(p.pattern, func(t *testing.T) {
			n := nfa.MustCompile(p.pattern, p.flags)
			seq := New(DefaultConfig()).ExtractPrefixes(n)
			require.NotNil(t, seq)

			bt := nfa.NewBacktracker(n, 0)
			st := nfa.NewSearchState(n)
			for _, in := range inputs {
				subject := []byte(in)
				ok, err := bt.Search(st, subject, 0, 0, 0)
				require.NoError(t, err)
				if !ok {
					continue
				}
				s, e, _ := st.Group(0)
				found := false
				for i := 0; i < seq.Len(); i++ {
					l := seq.Get(i)
					if bytes.HasPrefix(subject[s:], l.Bytes) {
						found = true
					}
				}
				assert.True(t, found, "match %q in %q starts with no literal of %v", subject[s:e], in, literals(seq))
				if seq.AllComplete() {
					exact := false
					for i := 0; i < seq.Len(); i++ {
						exact = exact || bytes.Equal(subject[s:e], seq.Get(i).Bytes)
					}
					assert.True(t, exact, "complete set misses %q", subject[s:e])
				}
			}
		})
	}
}

func BenchmarkExtractPrefixes(b *testing.B) {
	n := nfa.MustCompile(`(?:GET|POST|PUT|DELETE) /api/v[12]/\w+`, 0)
	e := New(DefaultConfig())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.ExtractPrefixes(n)
	}
}
