package meta

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/ecmare/nfa"
)

// plainConfig disables every accelerator.
func plainConfig() Config {
	c := DefaultConfig()
	c.EnablePrefilter = false
	c.EnableBMH = false
	c.EnableLiteralSet = false
	return c
}

func TestStrategySelection(t *testing.T) {
	tests := []struct {
		pattern string
		flags   nfa.Flags
		want    Strategy
	}{
		{`hello`, 0, UseBMH},
		{`hello`, nfa.FlagIgnoreCase, UseBMH},
		{`foo|bar|baz`, 0, UseLiteralSet},
		{`foo\d+`, 0, UsePrefilter},
		{`[xy]\d`, 0, UseLiteralSet},
		{`[xy]\w`, 0, UsePrefilter},
		{`a`, 0, UsePrefilter},
		{`a*`, 0, UseBacktrack},
		{`abcd|bc`, 0, UsePrefilter},
		{`\w+@\w+\.\w+`, 0, UseBacktrack},
		{`(?:)`, 0, UseBacktrack},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.flags.String(), func(t *testing.T) {
			e, err := Compile(tt.pattern, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Strategy(), "got %s", e.Strategy())
		})
	}

	e, err := CompileWithConfig(`hello`, 0, plainConfig())
	require.NoError(t, err)
	assert.Equal(t, UseBacktrack, e.Strategy())
	assert.Nil(t, e.Prefilter())
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "UseBacktrack", UseBacktrack.String())
	assert.Equal(t, "UseBMH", UseBMH.String())
	assert.Equal(t, "UseLiteralSet", UseLiteralSet.String())
	assert.Equal(t, "UsePrefilter", UsePrefilter.String())
	assert.Equal(t, "Unknown", Strategy(42).String())
}

func TestEngineFind(t *testing.T) {
	tests := []struct {
		pattern  string
		flags    nfa.Flags
		haystack string
		want     []int
	}{
		{`hello`, 0, "say hello", []int{4, 9}},
		{`HELLO`, nfa.FlagIgnoreCase, "say hello", []int{4, 9}},
		{`foo|bar`, 0, "xxbarfoo", []int{2, 5}},
		{`(\d+)-(\d+)`, 0, "tel 12-345", []int{4, 10, 4, 6, 7, 10}},
		{`foo(\d)?`, 0, "foo", []int{0, 3, -1, -1}},
		{`(?<=\$)\d+`, 0, "cost $42", []int{6, 8}},
		{`\bcat\b`, 0, "concat cat", []int{7, 10}},
		{`a*`, 0, "bbb", []int{0, 0}},
		{`x`, 0, "abc", nil},
		{"[\u00E9]x", 0, "caf\u00E9x", []int{3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			e, err := Compile(tt.pattern, tt.flags)
			require.NoError(t, err)
			m := e.Find([]byte(tt.haystack))
			if tt.want == nil {
				assert.Nil(t, m)
				assert.False(t, e.IsMatch([]byte(tt.haystack)))
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.Spans())
			assert.True(t, e.IsMatch([]byte(tt.haystack)))
		})
	}
}

// Accelerated searches must report what plain backtracking reports.
func TestAcceleratorsAgreeWithBacktracker(t *testing.T) {
	patterns := []string{
		`hello`, `ab`, `foo|bar|baz`, `get|post|put`, `foo\d+`, `(?:abc|abd)x`,
		`[xy]\d`, `a`, `k`, "\u00E9t\u00E9", `st`, `x(?=y)`, `(a)(b)?`,
		"[\u00E9\uFFFD]z", `a|bc|def`, `Ka`,
		`\w+@\w+\.\w+`, `\s*[,;]\s*`, `[a-z]+\d`, `[bc]*d`, `abcd|bc`, `(a)|\1{1,3}b`,
	}
	subjects := []string{
		"", "hello world", "HeLLo", "ab ab", "foobar baz", "GET /post", "foo12 foo",
		"abdx abcx", "x1 y2", "aaa", "K and k", "\u00E9T\u00C9", "\u017Ft ST",
		"xy", "ab", "\xe9z \u00E9z", "\xff\xfez", "def bc a", "KA ka",
		"me@host.io next", "a , b;c", "a1 b22", "abcd", "xabcd", "xb",
	}
	flagSets := []nfa.Flags{0, nfa.FlagIgnoreCase}
	matchFlags := []nfa.MatchFlags{0, nfa.MatchAtEnd, nfa.Continuous, nfa.NotNull}

	for _, flags := range flagSets {
		for _, p := range patterns {
			fast, err := Compile(p, flags)
			require.NoError(t, err)
			slow, err := CompileWithConfig(p, flags, plainConfig())
			require.NoError(t, err)

			for _, s := range subjects {
				h := []byte(s)
				for _, mf := range matchFlags {
					for start := 0; start <= len(h); start++ {
						want, err := slow.Search(h, start, 0, mf)
						require.NoError(t, err)
						got, err := fast.Search(h, start, 0, mf)
						require.NoError(t, err)
						if want == nil {
							assert.Nil(t, got, "%q /%s %q start %d flags %d", p, flags, s, start, mf)
							continue
						}
						if assert.NotNil(t, got, "%q /%s %q start %d flags %d", p, flags, s, start, mf) {
							assert.Equal(t, want.Spans(), got.Spans(), "%q /%s %q start %d flags %d", p, flags, s, start, mf)
						}
					}
				}
			}
		}
	}
}

func TestSearchComplexity(t *testing.T) {
	config := DefaultConfig()
	config.MaxFailures = 1000
	e, err := CompileWithConfig(`(a+)+b`, 0, config)
	require.NoError(t, err)

	_, err = e.Search([]byte(strings.Repeat("a", 28)), 0, 0, 0)
	require.ErrorIs(t, err, nfa.ErrComplexity)
	assert.Nil(t, e.Find([]byte(strings.Repeat("a", 28))))
	assert.NotZero(t, e.Stats().ComplexityAborts)

	m := e.Find([]byte("aab"))
	require.NotNil(t, m, "the engine stays usable")
	assert.Equal(t, "aab", m.String())
}

// A leading loop puts a rewinder in front of the pattern; candidates must
// still be verified from real match starts.
func TestLeadingLoopCandidates(t *testing.T) {
	tests := []struct {
		pattern  string
		haystack string
		want     []int
	}{
		{`\w+@\w+\.\w+`, "me@host.io next", []int{0, 10}},
		{`\s*[,;]\s*`, "a , b;c", []int{1, 4}},
		{`[a-z]+\d`, "a1 b22", []int{0, 2}},
		{`[bc]*d`, "abcd", []int{1, 4}},
		{`abcd|bc`, "abcd", []int{0, 4}},
		{`abcd|bc`, "xabcd", []int{1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			e, err := Compile(tt.pattern, 0)
			require.NoError(t, err)
			m := e.Find([]byte(tt.haystack))
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.Spans())
		})
	}
}

func TestSearchStackLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxStack = 64
	e, err := CompileWithConfig(`(?:a|ab)*c`, 0, config)
	require.NoError(t, err)

	_, err = e.Search([]byte(strings.Repeat("ab", 200)), 0, 0, 0)
	require.ErrorIs(t, err, nfa.ErrStack)
	assert.NotErrorIs(t, err, nfa.ErrComplexity)

	m := e.Find([]byte("abc"))
	require.NotNil(t, m)
	assert.Equal(t, "abc", m.String())
}

func TestSearchBounds(t *testing.T) {
	e, err := Compile(`a`, 0)
	require.NoError(t, err)
	m, err := e.Search([]byte("a"), 5, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, m)
	m, err = e.Search([]byte("a"), -1, 0, 0)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestStats(t *testing.T) {
	e, err := Compile(`hello`, 0)
	require.NoError(t, err)
	e.Find([]byte("hello"))
	e.Find([]byte("nope"))
	s := e.Stats()
	assert.Equal(t, uint64(2), s.Searches)
	assert.Equal(t, uint64(2), s.BMHSearches)
	assert.Zero(t, s.BacktrackRuns)

	// Continuous searches bypass BMH.
	_, err = e.Search([]byte("hello"), 0, 0, nfa.Continuous)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Stats().BacktrackRuns)

	e.ResetStats()
	assert.Equal(t, Stats{}, e.Stats())

	set, err := Compile(`foo|bar|baz`, 0)
	require.NoError(t, err)
	set.Find([]byte("a bar"))
	assert.Equal(t, uint64(1), set.Stats().LiteralSetSearches)
}

func TestPrefilterAbandoned(t *testing.T) {
	config := DefaultConfig()
	config.Tracker.WarmupPeriod = 4
	config.Tracker.CheckInterval = 1
	config.Tracker.MinEfficiency = 0.5
	e, err := CompileWithConfig(`a\w`, 0, config)
	require.NoError(t, err)
	require.Equal(t, UsePrefilter, e.Strategy())

	h := []byte(strings.Repeat("a-", 50) + "a7")
	m := e.Find(h)
	require.NotNil(t, m)
	assert.Equal(t, "a7", m.String())

	s := e.Stats()
	assert.Equal(t, uint64(1), s.PrefilterAbandoned)
	assert.Equal(t, uint64(4), s.PrefilterCandidates)
}

func TestConcurrentSearch(t *testing.T) {
	e, err := Compile(`(\w+)@(\w+)\.com`, 0)
	require.NoError(t, err)
	h := []byte("contact: alice@example.com, bob@test.com")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				m := e.Find(h)
				if m == nil || m.String() != "alice@example.com" || string(m.GroupBytes(2)) != "example" {
					errs <- "unexpected match"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
	assert.Equal(t, uint64(16*200), e.Stats().Searches)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(`(abc`, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, nfa.ErrorParen)

	config := DefaultConfig()
	config.MaxNestingDepth = 10
	_, err = CompileWithConfig(strings.Repeat("(", 20)+"a"+strings.Repeat(")", 20), 0, config)
	require.Error(t, err)

	config.MaxNestingDepth = 1
	_, err = CompileWithConfig(`a`, 0, config)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "MaxNestingDepth", cerr.Field)
}

func BenchmarkEngineFind(b *testing.B) {
	haystack := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 200) + "foo123")
	for _, p := range []string{`lazy cat`, `foo\d+`, `cat|cow|foo`, `\d+`} {
		e, err := Compile(p, 0)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(p, func(b *testing.B) {
			b.SetBytes(int64(len(haystack)))
			for i := 0; i < b.N; i++ {
				e.Find(haystack)
			}
		})
	}
}
