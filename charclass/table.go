package charclass

import "github.com/coregx/ecmare/internal/conv"

// Pos locates one class inside a flattened Table.
type Pos struct {
	Offset uint32
	Len    uint32
}

// Table is the read-only, flattened form of a Registry: all ranges in one
// array, each class addressed by its Pos.
type Table struct {
	ranges []Range
	pos    []Pos
}

// Flatten builds the table for the classes registered so far.
func (r *Registry) Flatten() *Table {
	n := 0
	for _, c := range r.classes {
		n += len(c.ranges)
	}
	t := &Table{
		ranges: make([]Range, 0, n),
		pos:    make([]Pos, len(r.classes)),
	}
	for i, c := range r.classes {
		t.pos[i] = Pos{
			Offset: conv.IntToUint32(len(t.ranges)),
			Len:    conv.IntToUint32(len(c.ranges)),
		}
		t.ranges = append(t.ranges, c.ranges...)
	}
	return t
}

// Pos returns the position of class id.
func (t *Table) Pos(id ID) Pos {
	return t.pos[id]
}

// Contains reports whether c belongs to the class at p.
func (t *Table) Contains(p Pos, c rune) bool {
	return contains(t.ranges[p.Offset:p.Offset+p.Len], c)
}

// Set returns the class at p as a RangeSet sharing the table's storage.
func (t *Table) Set(p Pos) RangeSet {
	return RangeSet{ranges: t.ranges[p.Offset : p.Offset+p.Len : p.Offset+p.Len]}
}

// NumClasses returns the number of classes in the table.
func (t *Table) NumClasses() int {
	return len(t.pos)
}
