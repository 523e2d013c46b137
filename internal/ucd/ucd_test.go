package ucd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in, want rune
	}{
		{'a', 'A'},
		{'A', 'A'},
		{'k', 'K'},
		{0x212A, 'K'}, // KELVIN SIGN
		{'s', 'S'},
		{0x017F, 'S'}, // LATIN SMALL LETTER LONG S
		{'1', '1'},
		{0x03C3, 0x03A3}, // sigma
		{0x03C2, 0x03A3}, // final sigma
		{0x4E00, 0x4E00},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, Fold(tt.in), "Fold(%U)", tt.in)
	}
}

func TestFoldSet(t *testing.T) {
	assert.Equal(t, []rune{'K', 'k', 0x212A}, FoldSet('k'))
	assert.Equal(t, []rune{'X', 'x'}, FoldSet('x'))
	assert.Equal(t, []rune{'-'}, FoldSet('-'))
	assert.Equal(t, 3, FoldSetSize(0x212A))
	assert.Equal(t, 1, FoldSetSize('7'))
}

func TestFoldables(t *testing.T) {
	f := FoldablesIn('A', 'z')
	assert.Len(t, f, 52)
	assert.Contains(t, Foldables(), rune(0xDF), "sharp s folds with U+1E9E")
	assert.Contains(t, Foldables(), rune(0x212A))
	assert.NotContains(t, FoldablesIn(0, 0x7F), rune('_'))
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name, value string
		in          []rune
		out         []rune
	}{
		{"Lu", "", []rune{'A', 'Z', 0x0391}, []rune{'a', '1'}},
		{"Uppercase_Letter", "", []rune{'Q'}, []rune{'q'}},
		{"General_Category", "Nd", []rune{'0', 0x0660}, []rune{'a'}},
		{"gc", "L", []rune{'a', 'Z', 0x3042}, []rune{'1'}},
		{"LC", "", []rune{'a', 'A', 0x01C5}, []rune{0x3042}},
		{"Cn", "", []rune{0x0378}, []rune{'a', 0xE000}},
		{"C", "", []rune{0x0378, 0x0000, 0xE000}, []rune{'a'}},
		{"Script", "Greek", []rune{0x03B1}, []rune{'a'}},
		{"sc", "Latn", []rune{'a'}, []rune{0x03B1}},
		{"scx", "Cyrl", []rune{0x0416}, []rune{'a'}},
		{"Alphabetic", "", []rune{'a', 0x3042}, []rune{'1', '_'}},
		{"Alpha", "", []rune{'b'}, []rune{'-'}},
		{"ASCII", "", []rune{0, 0x7F}, []rune{0x80}},
		{"Any", "", []rune{0, MaxRune}, nil},
		{"Assigned", "", []rune{'a'}, []rune{0x0378}},
		{"White_Space", "", []rune{' ', 0x3000}, []rune{'a'}},
		{"space", "", []rune{'\t'}, []rune{'x'}},
		{"ID_Start", "", []rune{'a', 0x3042}, []rune{'1', '$'}},
		{"ID_Continue", "", []rune{'1', '_'}, []rune{'-'}},
		{"Lowercase", "", []rune{'a', 0x00AA}, []rune{'A'}},
	}
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			rs, ok := Lookup(tt.name, tt.value)
			require.True(t, ok)
			for _, r := range tt.in {
				assert.Truef(t, Contains(rs, r), "%U should be included", r)
			}
			for _, r := range tt.out {
				assert.Falsef(t, Contains(rs, r), "%U should be excluded", r)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, q := range [][2]string{
		{"NoSuchProperty", ""},
		{"Other_Alphabetic", ""},
		{"Script", "Klingon"},
		{"Foo", "Lu"},
		{"gc", "Latin"},
	} {
		_, ok := Lookup(q[0], q[1])
		assert.Falsef(t, ok, "%s=%s", q[0], q[1])
	}
}

func TestIdentifier(t *testing.T) {
	assert.True(t, IsIDStart('a'))
	assert.True(t, IsIDStart('$'))
	assert.True(t, IsIDStart('_'))
	assert.False(t, IsIDStart('1'))
	assert.True(t, IsIDContinue('1'))
	assert.True(t, IsIDContinue(0x200D))
	assert.False(t, IsIDContinue('-'))
}

func TestNormalize(t *testing.T) {
	got := normalize([]Range{{5, 9}, {0, 2}, {3, 3}, {20, 30}, {8, 12}})
	assert.Equal(t, []Range{{0, 3}, {5, 12}, {20, 30}}, got)
	got = normalize([]Range{{4, 4}, {0, 3}, {5, 6}})
	assert.Equal(t, []Range{{0, 6}}, got, "adjacent ranges merge")
	assert.Equal(t, []Range{{0, 4}, {10, MaxRune}}, negate([]Range{{5, 9}}))
	assert.Equal(t, []Range{{0, 4}, {8, 10}}, subtract([]Range{{0, 10}}, []Range{{5, 7}}))
}
