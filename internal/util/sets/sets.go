package sets

import (
	"cmp"
	"slices"
)

// Set is a simple generic hash set for comparable keys.
// Usage: s := sets.New("a", "b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// AddNew inserts v and reports whether it was absent.
func (s Set[T]) AddNew(v T) bool {
	if s.Has(v) {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// MissingKeys returns the keys of m not in allowed, sorted.
func MissingKeys[T cmp.Ordered, V any](m map[T]V, allowed Set[T]) []T {
	var out []T
	for k := range m {
		if !allowed.Has(k) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
