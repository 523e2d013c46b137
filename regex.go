// Package ecmare provides an ECMAScript regular expression engine for Go.
//
// Patterns follow ECMAScript syntax and semantics: backreferences,
// lookahead and lookbehind assertions, named groups, \p{...} property
// escapes and the i, m and s flags. Matching is leftmost-first and runs on
// a backtracking automaton guarded by a failure budget, with literal
// accelerators (Boyer-Moore-Horspool, Aho-Corasick, byte prefilters) that
// never change results.
//
// The API mirrors the standard library's regexp package, so switching an
// import is usually enough to move a program to ECMAScript syntax.
//
// Basic usage:
//
//	re, err := ecmare.Compile(`(?<year>\d{4})-(?<month>\d{2})`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(re.FindString("due 2024-07")) // "2024-07"
//	fmt.Println(re.ReplaceAllString("2024-07", "$<month>/$<year>")) // "07/2024"
//
// Flags:
//
//	re := ecmare.MustCompileFlags(`^hello$`, ecmare.IgnoreCase|ecmare.Multiline)
//
// A search that exceeds the failure budget reports no match from the
// regexp-style methods; Search returns the error instead.
package ecmare

import (
	"strings"
	"unicode/utf8"

	"github.com/coregx/ecmare/meta"
	"github.com/coregx/ecmare/nfa"
)

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines.
//
// Example:
//
//	re := ecmare.MustCompile(`hello`)
//	if re.Match([]byte("hello world")) {
//	    println("matched!")
//	}
type Regex struct {
	engine  *meta.Engine
	pattern string
	flags   Flags
}

// Regexp is an alias for Regex to provide drop-in compatibility with stdlib regexp.
//
// Example:
//
//	import regexp "github.com/coregx/ecmare"
//
//	var re *regexp.Regexp = regexp.MustCompile(`\d+`)
type Regexp = Regex

// Flags are compile options.
type Flags = nfa.Flags

// Compile flags.
const (
	IgnoreCase = nfa.FlagIgnoreCase
	Multiline  = nfa.FlagMultiline
	DotAll     = nfa.FlagDotAll
	NoSubs     = nfa.FlagNoSubs
)

// MatchFlags adjust a single Search.
type MatchFlags = nfa.MatchFlags

// Search flags.
const (
	NotBOL     = nfa.NotBOL
	NotEOL     = nfa.NotEOL
	NotBOW     = nfa.NotBOW
	NotEOW     = nfa.NotEOW
	PrevAvail  = nfa.PrevAvail
	NotNull    = nfa.NotNull
	Continuous = nfa.Continuous
	MatchAtEnd = nfa.MatchAtEnd
)

// ErrComplexity is returned by Search when the failure budget runs out.
var ErrComplexity = nfa.ErrComplexity

// ErrStack is returned by Search when a match attempt needs more
// backtracking frames than Config.MaxStack allows.
var ErrStack = nfa.ErrStack

// Config controls engine limits and search acceleration.
type Config = meta.Config

// Compile compiles a regular expression pattern without flags.
//
// Example:
//
//	re, err := ecmare.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, 0, meta.DefaultConfig())
}

// CompileFlags compiles pattern with the given flags.
func CompileFlags(pattern string, flags Flags) (*Regex, error) {
	return CompileWithConfig(pattern, flags, meta.DefaultConfig())
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// Example:
//
//	config := ecmare.DefaultConfig()
//	config.MaxFailures = 100000 // fail fast on pathological input
//	re, err := ecmare.CompileWithConfig(`(a+)+b`, 0, config)
func CompileWithConfig(pattern string, flags Flags, config Config) (*Regex, error) {
	engine, err := meta.CompileWithConfig(pattern, flags, config)
	if err != nil {
		return nil, &Error{Expr: pattern, Err: err}
	}

	return &Regex{
		engine:  engine,
		pattern: pattern,
		flags:   flags,
	}, nil
}

// MustCompile compiles a regular expression pattern and panics if it fails.
//
// Example:
//
//	var emailRegex = ecmare.MustCompile(`[a-z]+@[a-z]+\.[a-z]+`)
func MustCompile(pattern string) *Regex {
	return MustCompileFlags(pattern, 0)
}

// MustCompileFlags is like CompileFlags but panics if the pattern is invalid.
func MustCompileFlags(pattern string, flags Flags) *Regex {
	re, err := CompileFlags(pattern, flags)
	if err != nil {
		panic("ecmare: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// DefaultConfig returns the default configuration for compilation.
func DefaultConfig() Config {
	return meta.DefaultConfig()
}

// ParseFlags parses the flag letters of a /pattern/flags literal. The
// letters i, m, s and n are accepted; g, u, y and d describe iteration or
// input handling and are ignored.
func ParseFlags(s string) (Flags, error) {
	var flags Flags
	for _, c := range s {
		switch c {
		case 'i':
			flags |= IgnoreCase
		case 'm':
			flags |= Multiline
		case 's':
			flags |= DotAll
		case 'n':
			flags |= NoSubs
		case 'g', 'u', 'y', 'd':
		default:
			return 0, &FlagError{Flags: s, Flag: c}
		}
	}
	return flags, nil
}

// QuoteMeta returns a string that escapes all regular expression metacharacters
// inside the argument text; the returned string is a regular expression matching
// the literal text.
//
// Example:
//
//	escaped := ecmare.QuoteMeta("hello.world")
//	// escaped = "hello\\.world"
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$/`

	n := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(special, s[i]) >= 0 {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, len(s)+n)
	j := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(special, s[i]) >= 0 {
			buf[j] = '\\'
			j++
		}
		buf[j] = s[i]
		j++
	}
	return string(buf)
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}

// Flags returns the compile flags.
func (r *Regex) Flags() Flags {
	return r.flags
}

// Strategy returns the search strategy selected for the pattern.
func (r *Regex) Strategy() meta.Strategy {
	return r.engine.Strategy()
}

// Stats returns the engine's execution counters.
func (r *Regex) Stats() meta.Stats {
	return r.engine.Stats()
}

// Dump renders the compiled automaton, one state per line.
func (r *Regex) Dump() string {
	return r.engine.NFA().String()
}

// NumSubexp returns the number of parenthesized subexpressions.
func (r *Regex) NumSubexp() int {
	return r.engine.NumGroups() - 1
}

// SubexpNames returns the names of the parenthesized subexpressions.
// names[0] is always "" and unnamed groups map to "".
// The slice must not be modified.
//
// Example:
//
//	re := ecmare.MustCompile(`(?<year>\d+)-(?<month>\d+)`)
//	names := re.SubexpNames()
//	// names[1] = "year"
//	// names[2] = "month"
func (r *Regex) SubexpNames() []string {
	return r.engine.GroupNames()
}

// SubexpIndex returns the index of the group with the given name, or -1.
func (r *Regex) SubexpIndex(name string) int {
	return r.engine.NFA().GroupIndex(name)
}

// Search runs one search with full control: matching starts at byte offset
// start, assertions and lookbehinds may look back to lookbehindLimit, and
// flags adjust the search. It returns the group spans (nil when there is no
// match) or an error wrapping ErrComplexity or ErrStack.
func (r *Regex) Search(b []byte, start, lookbehindLimit int, flags MatchFlags) ([]int, error) {
	m, err := r.engine.Search(b, start, lookbehindLimit, flags)
	if err != nil || m == nil {
		return nil, err
	}
	return m.Spans(), nil
}

// find returns the group spans of the leftmost match at or after pos.
func (r *Regex) find(b []byte, pos int) []int {
	m := r.engine.FindAt(b, pos)
	if m == nil {
		return nil
	}
	return m.Spans()
}

// allMatches calls deliver for each successive match, following the
// standard library's rules: an empty match right after a previous match is
// skipped and the scan then moves ahead one code point.
func (r *Regex) allMatches(b []byte, n int, deliver func([]int)) {
	end := len(b)
	if n < 0 {
		n = end + 1
	}
	for pos, i, prevMatchEnd := 0, 0, -1; i < n && pos <= end; {
		m := r.find(b, pos)
		if m == nil {
			break
		}

		accept := true
		if m[1] == pos {
			if m[0] == prevMatchEnd {
				accept = false
			}
			if pos < end {
				_, w := utf8.DecodeRune(b[pos:])
				pos += w
			} else {
				pos = end + 1
			}
		} else {
			pos = m[1]
		}
		prevMatchEnd = m[1]

		if accept {
			deliver(m)
			i++
		}
	}
}

// Match reports whether the byte slice b contains any match of the pattern.
func (r *Regex) Match(b []byte) bool {
	return r.engine.IsMatch(b)
}

// MatchString reports whether the string s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.engine.IsMatch([]byte(s))
}

// Find returns a slice holding the text of the leftmost match in b.
// A return value of nil indicates no match.
//
// Example:
//
//	re := ecmare.MustCompile(`\d+`)
//	match := re.Find([]byte("age: 42"))
//	println(string(match)) // "42"
func (r *Regex) Find(b []byte) []byte {
	m := r.find(b, 0)
	if m == nil {
		return nil
	}
	return b[m[0]:m[1]:m[1]]
}

// FindString returns a string holding the text of the leftmost match in s.
// If there is no match, the return value is an empty string.
func (r *Regex) FindString(s string) string {
	m := r.find([]byte(s), 0)
	if m == nil {
		return ""
	}
	return s[m[0]:m[1]]
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost match in b. A return value of nil indicates no match.
func (r *Regex) FindIndex(b []byte) []int {
	m := r.find(b, 0)
	if m == nil {
		return nil
	}
	return m[0:2:2]
}

// FindStringIndex returns a two-element slice of integers defining the location
// of the leftmost match in s. A return value of nil indicates no match.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindSubmatch returns a slice holding the text of the leftmost match
// and the matches of all capture groups. Unmatched groups are nil.
//
// Example:
//
//	re := ecmare.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	match := re.FindSubmatch([]byte("user@example.com"))
//	// match[1] = "user"
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	m := r.find(b, 0)
	if m == nil {
		return nil
	}
	return submatchBytes(b, m)
}

// FindStringSubmatch returns a slice of strings holding the text of the leftmost
// match and the matches of all capture groups.
func (r *Regex) FindStringSubmatch(s string) []string {
	m := r.find([]byte(s), 0)
	if m == nil {
		return nil
	}
	return submatchStrings(s, m)
}

// FindSubmatchIndex returns a slice holding the index pairs for the leftmost
// match and the matches of all capture groups. Unmatched groups have -1
// indices.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	return r.find(b, 0)
}

// FindStringSubmatchIndex returns the index pairs for the leftmost match
// and capture groups. Same as FindSubmatchIndex but for strings.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.find([]byte(s), 0)
}

// FindAll returns a slice of all successive matches of the pattern in b.
// If n >= 0, it returns at most n matches.
//
// Example:
//
//	re := ecmare.MustCompile(`\d+`)
//	matches := re.FindAll([]byte("1 2 3"), -1)
//	// matches = [[]byte("1"), []byte("2"), []byte("3")]
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	var result [][]byte
	r.allMatches(b, n, func(m []int) {
		result = append(result, b[m[0]:m[1]:m[1]])
	})
	return result
}

// FindAllString returns a slice of all successive matches of the pattern in s.
func (r *Regex) FindAllString(s string, n int) []string {
	var result []string
	r.allMatches([]byte(s), n, func(m []int) {
		result = append(result, s[m[0]:m[1]])
	})
	return result
}

// FindAllIndex returns the index pairs of all successive matches in b.
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	var result [][]int
	r.allMatches(b, n, func(m []int) {
		result = append(result, m[0:2:2])
	})
	return result
}

// FindAllStringIndex returns the index pairs of all successive matches in s.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// FindAllSubmatch returns the text of all successive matches and their
// capture groups.
//
// Example:
//
//	re := ecmare.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	matches := re.FindAllSubmatch([]byte("a@b.c x@y.z"), -1)
//	// matches[1][1] = "x"
func (r *Regex) FindAllSubmatch(b []byte, n int) [][][]byte {
	var result [][][]byte
	r.allMatches(b, n, func(m []int) {
		result = append(result, submatchBytes(b, m))
	})
	return result
}

// FindAllStringSubmatch is the string version of FindAllSubmatch.
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	var result [][]string
	r.allMatches([]byte(s), n, func(m []int) {
		result = append(result, submatchStrings(s, m))
	})
	return result
}

// FindAllSubmatchIndex returns the group index pairs of all successive
// matches in b.
func (r *Regex) FindAllSubmatchIndex(b []byte, n int) [][]int {
	var result [][]int
	r.allMatches(b, n, func(m []int) {
		result = append(result, m)
	})
	return result
}

// FindAllStringSubmatchIndex is the string version of FindAllSubmatchIndex.
func (r *Regex) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return r.FindAllSubmatchIndex([]byte(s), n)
}

// Count returns the number of successive matches of the pattern in b.
// If n >= 0, counts at most n matches.
func (r *Regex) Count(b []byte, n int) int {
	count := 0
	r.allMatches(b, n, func([]int) { count++ })
	return count
}

// CountString returns the number of successive matches of the pattern in s.
func (r *Regex) CountString(s string, n int) int {
	return r.Count([]byte(s), n)
}

// Split slices s into substrings separated by the expression and returns a
// slice of the substrings between those expression matches.
//
// The count determines the number of substrings to return:
//
//	n > 0: at most n substrings; the last substring will be the unsplit remainder.
//	n == 0: the result is nil (zero substrings)
//	n < 0: all substrings
//
// Example:
//
//	re := ecmare.MustCompile(`,\s*`)
//	parts := re.Split("a, b,c", -1)
//	// parts = ["a", "b", "c"]
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	if r.pattern != "" && s == "" {
		return []string{""}
	}

	matches := r.FindAllStringIndex(s, n)
	result := make([]string, 0, len(matches)+1)

	beg, end := 0, 0
	for _, m := range matches {
		if n > 0 && len(result) == n-1 {
			break
		}
		end = m[0]
		if m[1] != 0 {
			result = append(result, s[beg:end])
		}
		beg = m[1]
	}
	if end != len(s) {
		result = append(result, s[beg:])
	}
	return result
}

func submatchBytes(b []byte, m []int) [][]byte {
	out := make([][]byte, len(m)/2)
	for i := range out {
		if m[2*i] >= 0 {
			out[i] = b[m[2*i]:m[2*i+1]:m[2*i+1]]
		}
	}
	return out
}

func submatchStrings(s string, m []int) []string {
	out := make([]string, len(m)/2)
	for i := range out {
		if m[2*i] >= 0 {
			out[i] = s[m[2*i]:m[2*i+1]]
		}
	}
	return out
}
