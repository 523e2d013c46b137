package meta

import (
	"testing"
)

// TestNewMatch tests Match construction via NewMatch.
func TestNewMatch(t *testing.T) {
	haystack := []byte("hello world foo bar")

	tests := []struct {
		name      string
		start     int
		end       int
		wantLen   int
		wantStr   string
		wantEmpty bool
	}{
		{"normal match in middle", 6, 11, 5, "world", false},
		{"match at beginning", 0, 5, 5, "hello", false},
		{"match at end", 16, 19, 3, "bar", false},
		{"empty match", 5, 5, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch(tt.start, tt.end, haystack)
			if m.Start() != tt.start || m.End() != tt.end {
				t.Errorf("span = [%d,%d), want [%d,%d)", m.Start(), m.End(), tt.start, tt.end)
			}
			if m.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", m.Len(), tt.wantLen)
			}
			if m.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", m.String(), tt.wantStr)
			}
			if m.IsEmpty() != tt.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", m.IsEmpty(), tt.wantEmpty)
			}
			if m.NumGroups() != 1 {
				t.Errorf("NumGroups() = %d, want 1", m.NumGroups())
			}
		})
	}
}

// TestMatchBytesSharesMemory verifies Bytes returns a view of the haystack.
func TestMatchBytesSharesMemory(t *testing.T) {
	haystack := []byte("hello world")
	m := NewMatch(0, 5, haystack)
	m.Bytes()[0] = 'J'
	if haystack[0] != 'J' {
		t.Error("Bytes() should share memory with the haystack")
	}
}

func TestMatchContains(t *testing.T) {
	m := NewMatch(5, 11, []byte("test foo123 end"))
	tests := []struct {
		pos  int
		want bool
	}{
		{4, false},
		{5, true},
		{10, true},
		{11, false},
	}
	for _, tt := range tests {
		if got := m.Contains(tt.pos); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.pos, got, tt.want)
		}
	}
	if NewMatch(3, 3, []byte("abcdef")).Contains(3) {
		t.Error("an empty match contains no position")
	}
}

func TestMatchGroups(t *testing.T) {
	haystack := []byte("key=value")
	m := newMatchWithSpans([]int{0, 9, 0, 3, -1, -1, 4, 9}, haystack)

	if m.NumGroups() != 4 {
		t.Fatalf("NumGroups() = %d, want 4", m.NumGroups())
	}
	tests := []struct {
		group   int
		want    string
		wantOK  bool
		wantNil bool
	}{
		{0, "key=value", true, false},
		{1, "key", true, false},
		{2, "", false, true},
		{3, "value", true, false},
		{4, "", false, true},
		{-1, "", false, true},
	}
	for _, tt := range tests {
		_, _, ok := m.Group(tt.group)
		if ok != tt.wantOK {
			t.Errorf("Group(%d) ok = %v, want %v", tt.group, ok, tt.wantOK)
		}
		b := m.GroupBytes(tt.group)
		if (b == nil) != tt.wantNil || string(b) != tt.want {
			t.Errorf("GroupBytes(%d) = %q, want %q", tt.group, b, tt.want)
		}
	}
}
