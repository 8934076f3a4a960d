package problems

import "sort"

// Set is a deduplicated collection of problems. Membership uses the
// structural equality of the problem values, so the same finding observed
// from the same call site collapses to one entry while the same finding
// from a different call site stays distinct.
type Set struct {
	members map[Problem]struct{}
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{members: make(map[Problem]struct{})}
}

// Add inserts a problem; duplicates are absorbed.
func (s *Set) Add(p Problem) {
	s.members[p] = struct{}{}
}

// AddAll inserts every problem from another set.
func (s *Set) AddAll(other *Set) {
	for p := range other.members {
		s.members[p] = struct{}{}
	}
}

// Contains reports membership.
func (s *Set) Contains(p Problem) bool {
	_, ok := s.members[p]
	return ok
}

// Len returns the number of distinct problems.
func (s *Set) Len() int { return len(s.members) }

// Slice returns the problems sorted by kind, then description, for
// deterministic output.
func (s *Set) Slice() []Problem {
	out := make([]Problem, 0, len(s.members))
	for p := range s.members {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind() != out[j].Kind() {
			return out[i].Kind() < out[j].Kind()
		}
		return out[i].Description() < out[j].Description()
	})
	return out
}
