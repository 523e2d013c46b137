package meta

// Match represents a successful match with its capture group spans.
//
// A Match contains:
//   - Start position (inclusive) and end position (exclusive) of group 0
//   - Start/end pairs of every capture group, -1 for groups that did not
//     participate
//   - Reference to the original haystack
//
// Example:
//
//	m := engine.Find([]byte("id: 42"))
//	println(m.String())          // "42"
//	println(m.Start(), m.End())  // 4, 6
type Match struct {
	// spans holds start/end pairs; spans[0:2] is the whole match.
	spans    []int
	haystack []byte
}

// NewMatch creates a Match without capture groups.
//
// The haystack is stored by reference (not copied).
// Callers must ensure the haystack remains valid for the lifetime of the Match.
//
// Example:
//
//	haystack := []byte("hello world")
//	match := meta.NewMatch(0, 5, haystack) // "hello"
func NewMatch(start, end int, haystack []byte) *Match {
	return &Match{
		spans:    []int{start, end},
		haystack: haystack,
	}
}

// newMatchWithSpans takes ownership of spans.
func newMatchWithSpans(spans []int, haystack []byte) *Match {
	return &Match{spans: spans, haystack: haystack}
}

// Start returns the inclusive start position of the match.
func (m *Match) Start() int {
	return m.spans[0]
}

// End returns the exclusive end position of the match.
func (m *Match) End() int {
	return m.spans[1]
}

// Len returns the length of the match in bytes.
func (m *Match) Len() int {
	return m.spans[1] - m.spans[0]
}

// Bytes returns the matched bytes.
//
// The returned slice references the original haystack (no copy).
func (m *Match) Bytes() []byte {
	return m.haystack[m.spans[0]:m.spans[1]]
}

// String returns the matched text as a string.
func (m *Match) String() string {
	return string(m.Bytes())
}

// IsEmpty returns true if the match has zero length.
func (m *Match) IsEmpty() bool {
	return m.spans[0] == m.spans[1]
}

// Contains returns true if pos lies within [Start, End).
//
// Example:
//
//	match := meta.NewMatch(5, 11, []byte("test foo123 end"))
//	println(match.Contains(7))  // true
//	println(match.Contains(11)) // false (exclusive end)
func (m *Match) Contains(pos int) bool {
	return pos >= m.spans[0] && pos < m.spans[1]
}

// NumGroups returns the number of groups, group 0 included.
func (m *Match) NumGroups() int {
	return len(m.spans) / 2
}

// Group returns the span of group i. ok is false when the group did not
// participate in the match or i is out of range.
func (m *Match) Group(i int) (start, end int, ok bool) {
	if i < 0 || 2*i+1 >= len(m.spans) || m.spans[2*i] < 0 {
		return -1, -1, false
	}
	return m.spans[2*i], m.spans[2*i+1], true
}

// GroupBytes returns the text of group i, or nil if it did not participate.
func (m *Match) GroupBytes(i int) []byte {
	s, e, ok := m.Group(i)
	if !ok {
		return nil
	}
	return m.haystack[s:e]
}

// Spans returns the start/end pairs of all groups. The slice is shared
// with the Match.
func (m *Match) Spans() []int {
	return m.spans
}
