package charclass

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coregx/ecmare/internal/ucd"
)

// ID identifies a class within a Registry.
type ID uint32

// Predefined class IDs. Every Registry starts with these six classes.
const (
	Newline  ID = iota // \n \r U+2028 U+2029
	DotAll             // every code point
	Space              // \s
	Digit              // \d
	Word               // \w
	FoldWord           // \w under case-insensitive matching

	numPredefined
)

// ErrUnknownProperty is returned by Property for names the Unicode tables do
// not define.
var ErrUnknownProperty = errors.New("unknown Unicode property")

// PropertyError reports an unknown \p{...} name or value.
type PropertyError struct {
	Name  string
	Value string
}

// Error implements the error interface.
func (e *PropertyError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("unknown Unicode property %s=%s", e.Name, e.Value)
	}
	return fmt.Sprintf("unknown Unicode property %s", e.Name)
}

// Is matches ErrUnknownProperty.
func (e *PropertyError) Is(target error) bool {
	return target == ErrUnknownProperty
}

var predefined = sync.OnceValue(func() []RangeSet {
	sets := make([]RangeSet, numPredefined)
	sets[Newline] = NewRangeSet(Range{0x0A, 0x0A}, Range{0x0D, 0x0D}, Range{0x2028, 0x2029})
	sets[DotAll] = NewRangeSet(Range{0, MaxRune})

	space := NewRangeSet(Range{0x09, 0x0D}, Range{0x20, 0x20}, Range{0xA0, 0xA0},
		Range{0xFEFF, 0xFEFF}, Range{0x2028, 0x2029})
	zs, _ := ucd.Lookup("Zs", "")
	space.Merge(fromUCD(zs))
	sets[Space] = space

	sets[Digit] = NewRangeSet(Range{'0', '9'})
	sets[Word] = NewRangeSet(Range{'0', '9'}, Range{'A', 'Z'}, Range{'_', '_'}, Range{'a', 'z'})
	sets[FoldWord] = sets[Word].CaseUnfold()
	return sets
})

// Predefined returns the predefined class with the given id.
func Predefined(id ID) RangeSet {
	return predefined()[id]
}

// Property returns the set named by a \p{name} or \p{name=value} escape.
func Property(name, value string) (RangeSet, error) {
	rs, ok := ucd.Lookup(name, value)
	if !ok {
		return RangeSet{}, &PropertyError{Name: name, Value: value}
	}
	return fromUCD(rs), nil
}

// Registry is an append-only table of classes. Identical sets share an ID.
// A Registry is not safe for concurrent mutation; compiled automata only read
// it.
type Registry struct {
	classes []RangeSet
	index   map[string]ID
}

// NewRegistry returns a registry holding the predefined classes.
func NewRegistry() *Registry {
	pre := predefined()
	r := &Registry{
		classes: make([]RangeSet, len(pre), len(pre)+8),
		index:   make(map[string]ID, len(pre)+8),
	}
	copy(r.classes, pre)
	for i, s := range pre {
		k := s.key()
		if _, dup := r.index[k]; !dup {
			r.index[k] = ID(i)
		}
	}
	return r
}

// Register returns the ID of s, adding it when no identical class exists.
func (r *Registry) Register(s RangeSet) ID {
	k := s.key()
	if id, ok := r.index[k]; ok {
		return id
	}
	id := ID(len(r.classes))
	r.classes = append(r.classes, s.Clone())
	r.index[k] = id
	return id
}

// LookupProperty registers the class named by a property escape.
func (r *Registry) LookupProperty(name, value string) (ID, error) {
	s, err := Property(name, value)
	if err != nil {
		return 0, err
	}
	return r.Register(s), nil
}

// Class returns the set registered under id.
func (r *Registry) Class(id ID) RangeSet {
	return r.classes[id]
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.classes)
}
