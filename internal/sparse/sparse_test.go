package sparse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Basic(t *testing.T) {
	s := New(10)
	assert.Equal(t, 10, s.Capacity())
	assert.Equal(t, 0, s.Len())

	assert.True(t, s.Visit(3))
	assert.True(t, s.Visit(7))
	assert.False(t, s.Visit(3), "second visit reports a member")
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Contains(3))
	assert.True(t, s.Contains(7))
	assert.False(t, s.Contains(4))
	assert.False(t, s.Contains(10), "out of range is never a member")
	assert.False(t, s.Contains(1<<31))
}

func TestSet_InsertionOrder(t *testing.T) {
	s := New(100)
	for _, v := range []uint32{42, 7, 99, 0} {
		s.Visit(v)
	}
	assert.Equal(t, []uint32{42, 7, 99, 0}, s.Values())
}

func TestSet_Remove(t *testing.T) {
	s := New(10)
	s.Visit(1)
	s.Visit(2)
	s.Visit(3)

	s.Remove(1)
	assert.False(t, s.Contains(1))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(3))
	assert.ElementsMatch(t, []uint32{2, 3}, s.Values())

	s.Remove(3)
	s.Remove(9)
	assert.Equal(t, []uint32{2}, s.Values())
}

func TestSet_Clear(t *testing.T) {
	s := New(16)
	for v := uint32(0); v < 16; v++ {
		s.Visit(v)
	}
	s.Clear()
	assert.Equal(t, 0, s.Len())
	for v := uint32(0); v < 16; v++ {
		require.False(t, s.Contains(v))
	}
	// Stale sparse entries must not resurrect members.
	assert.True(t, s.Visit(5))
	assert.False(t, s.Contains(0))
}

func TestSet_CrossValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := New(64)
	ref := make(map[uint32]bool)
	for range 10000 {
		v := uint32(rng.Intn(64))
		switch rng.Intn(3) {
		case 0:
			assert.Equal(t, !ref[v], s.Visit(v))
			ref[v] = true
		case 1:
			s.Remove(v)
			delete(ref, v)
		default:
			assert.Equal(t, ref[v], s.Contains(v))
		}
	}
	assert.Equal(t, len(ref), s.Len())
}

func TestSet_VisitOutOfRangePanics(t *testing.T) {
	s := New(4)
	assert.Panics(t, func() { s.Visit(4) })
}

func BenchmarkSet_Visit(b *testing.B) {
	s := New(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%1024 == 0 {
			s.Clear()
		}
		s.Visit(uint32(i % 1024)) //nolint:gosec // bounded by the modulus
	}
}
