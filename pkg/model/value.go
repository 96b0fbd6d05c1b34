package model

// Value is the data backing an instance: Positional or Named. A nil Value
// means the instance was constructed without arguments.
type Value interface {
	isValue()
}

// Positional wraps an opaque value; the instance "is" this value.
type Positional struct {
	V any
}

// Named holds the instance's property bag.
type Named struct {
	Props *Properties
}

func (Positional) isValue() {}

func (Named) isValue() {}

// Set is an unordered collection of comparable values. Serialization turns
// any map whose element type is struct{} into a sorted slice.
type Set map[any]struct{}

// NewSet returns a set holding items.
func NewSet(items ...any) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add inserts item.
func (s Set) Add(item any) {
	s[item] = struct{}{}
}

// Contains reports whether item is a member.
func (s Set) Contains(item any) bool {
	_, ok := s[item]
	return ok
}
