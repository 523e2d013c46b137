package ecmare

import (
	"bytes"
	"strings"
)

// ReplaceAll returns a copy of src, replacing matches of the pattern
// with the replacement template repl. The template follows ECMAScript's
// String.prototype.replace:
//
//	$$       a literal $
//	$&       the whole match
//	$`       the text before the match
//	$'       the text after the match
//	$n $nn   group n (1-99)
//	$<name>  the named group
//	${name}  the named or numbered group
//
// Groups that did not participate expand to nothing. A $ that starts no
// valid sequence is copied as is.
//
// Example:
//
//	re := ecmare.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	result := re.ReplaceAll([]byte("user@example.com"), []byte("$1 at $2 dot $3"))
//	// result = []byte("user at example dot com")
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	if bytes.IndexByte(repl, '$') < 0 {
		return r.ReplaceAllLiteral(src, repl)
	}
	return r.replaceAll(src, func(dst []byte, m []int) []byte {
		return r.expand(dst, repl, src, m)
	})
}

// ReplaceAllString is the string version of ReplaceAll.
//
// Example:
//
//	re := ecmare.MustCompile(`(?<y>\d{4})-(?<m>\d{2})`)
//	result := re.ReplaceAllString("2024-07", "$<m>/$<y>")
//	// result = "07/2024"
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// ReplaceAllLiteral returns a copy of src, replacing matches of the pattern
// with repl. The replacement is substituted directly, without expanding $
// sequences.
func (r *Regex) ReplaceAllLiteral(src, repl []byte) []byte {
	return r.replaceAll(src, func(dst []byte, _ []int) []byte {
		return append(dst, repl...)
	})
}

// ReplaceAllLiteralString is the string version of ReplaceAllLiteral.
func (r *Regex) ReplaceAllLiteralString(src, repl string) string {
	return string(r.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAllFunc returns a copy of src in which every match has been
// replaced by the return value of repl applied to the matched bytes.
func (r *Regex) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	return r.replaceAll(src, func(dst []byte, m []int) []byte {
		return append(dst, repl(src[m[0]:m[1]])...)
	})
}

// ReplaceAllStringFunc is the string version of ReplaceAllFunc.
//
// Example:
//
//	re := ecmare.MustCompile(`\w+`)
//	result := re.ReplaceAllStringFunc("hello world", strings.ToUpper)
//	// result = "HELLO WORLD"
func (r *Regex) ReplaceAllStringFunc(src string, repl func(string) string) string {
	return string(r.replaceAll([]byte(src), func(dst []byte, m []int) []byte {
		return append(dst, repl(src[m[0]:m[1]])...)
	}))
}

// Expand appends template to dst with $ sequences expanded from match, a
// result of FindSubmatchIndex on src.
func (r *Regex) Expand(dst, template, src []byte, match []int) []byte {
	return r.expand(dst, template, src, match)
}

// ExpandString is the string version of Expand.
func (r *Regex) ExpandString(dst []byte, template, src string, match []int) []byte {
	return r.expand(dst, []byte(template), []byte(src), match)
}

func (r *Regex) replaceAll(src []byte, repl func(dst []byte, m []int) []byte) []byte {
	var result []byte
	lastEnd := 0
	r.allMatches(src, -1, func(m []int) {
		if result == nil {
			result = make([]byte, 0, len(src))
		}
		result = append(result, src[lastEnd:m[0]]...)
		result = repl(result, m)
		lastEnd = m[1]
	})
	if result == nil {
		return append([]byte(nil), src...)
	}
	return append(result, src[lastEnd:]...)
}

// expand appends template to dst, substituting $ sequences.
//
//nolint:gocognit,cyclop // one switch over the substitution forms
func (r *Regex) expand(dst, template, src []byte, match []int) []byte {
	numGroups := len(match) / 2
	group := func(dst []byte, n int) []byte {
		if n < numGroups && match[2*n] >= 0 {
			dst = append(dst, src[match[2*n]:match[2*n+1]]...)
		}
		return dst
	}

	for i := 0; i < len(template); {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			dst = append(dst, c)
			i++
			continue
		}

		switch next := template[i+1]; {
		case next == '$':
			dst = append(dst, '$')
			i += 2
		case next == '&':
			dst = group(dst, 0)
			i += 2
		case next == '`':
			dst = append(dst, src[:match[0]]...)
			i += 2
		case next == '\'':
			dst = append(dst, src[match[1]:]...)
			i += 2
		case isDigit(next):
			n, w := groupNumber(template[i+1:], numGroups)
			if w == 0 {
				dst = append(dst, '$')
				i++
				continue
			}
			dst = group(dst, n)
			i += 1 + w
		case next == '<' || next == '{':
			closer := byte('>')
			if next == '{' {
				closer = '}'
			}
			j := bytes.IndexByte(template[i+2:], closer)
			names := r.SubexpNames()
			if j < 0 || (next == '<' && !hasNames(names)) {
				dst = append(dst, '$')
				i++
				continue
			}
			name := string(template[i+2 : i+2+j])
			if n, ok := parseGroupRef(name); ok && next == '{' {
				dst = group(dst, n)
			} else if n := r.SubexpIndex(name); n >= 0 {
				dst = group(dst, n)
			}
			i += 3 + j
		default:
			dst = append(dst, '$')
			i++
		}
	}
	return dst
}

// groupNumber reads the group reference after a $: two digits when they
// name an existing group, otherwise one. w is 0 when no group is named.
func groupNumber(b []byte, numGroups int) (n, w int) {
	if len(b) >= 2 && isDigit(b[1]) {
		if nn := int(b[0]-'0')*10 + int(b[1]-'0'); nn >= 1 && nn < numGroups {
			return nn, 2
		}
	}
	if d := int(b[0] - '0'); d >= 1 && d < numGroups {
		return d, 1
	}
	return 0, 0
}

func parseGroupRef(s string) (int, bool) {
	if s == "" || len(s) > 4 || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func hasNames(names []string) bool {
	for _, name := range names {
		if name != "" {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
