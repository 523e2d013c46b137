// Package sparse provides a sparse set of small integers.
//
// The compiler's graph walks (first-character gathering, exclusivity checks)
// visit every state at most once; a sparse set records the visited states in
// O(1) per operation and can be emptied in O(1) between walks, which keeps
// repeated walks over large state arrays linear.
package sparse

// Set is a set of uint32 values below a fixed capacity. The sparse array maps
// a value to its index in dense; a value is a member when that index is in
// range and points back at it, so sparse never needs clearing.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// New creates an empty set for values in [0, capacity).
func New(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Capacity returns the exclusive upper bound of storable values.
func (s *Set) Capacity() int {
	return len(s.sparse)
}

// Visit adds v and reports whether it was absent. Values at or above the
// capacity are never members and Visit panics for them.
func (s *Set) Visit(v uint32) bool {
	if s.Contains(v) {
		return false
	}
	s.sparse[v] = uint32(len(s.dense)) //nolint:gosec // len(dense) < capacity
	s.dense = append(s.dense, v)
	return true
}

// Contains reports whether v is a member.
func (s *Set) Contains(v uint32) bool {
	if int64(v) >= int64(len(s.sparse)) {
		return false
	}
	i := s.sparse[v]
	return int(i) < len(s.dense) && s.dense[i] == v
}

// Remove deletes v if present by moving the last member into its slot.
func (s *Set) Remove(v uint32) {
	if !s.Contains(v) {
		return
	}
	i := s.sparse[v]
	last := s.dense[len(s.dense)-1]
	s.dense[i] = last
	s.sparse[last] = i
	s.dense = s.dense[:len(s.dense)-1]
}

// Clear empties the set in constant time.
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.dense)
}

// Values returns the members in insertion order (until the first Remove).
// The slice is valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
