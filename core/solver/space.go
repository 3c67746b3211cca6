package solver

import "github.com/kilianp07/epiplan/core/mdp"

// space is the state-space view the generic algorithms run against. Action
// arguments are positions in the action list.
type space[S comparable] interface {
	numActions() int
	action(i int) mdp.Action
	quality(s S, a int) float64
	value(s S) float64
	setValue(s S, v float64)
	// successors lists the states reachable from s under a.
	successors(s S, a int) []S
	isGoal(s S) bool
}

// walker drives the forward phase of a trial.
type walker[S comparable] interface {
	start() S
	// step moves from s under a. ok is false when no successor exists.
	step(s S, a int) (next S, ok bool)
}

// StateSet is an insertion-ordered set. Members are never removed.
type StateSet[S comparable] struct {
	members map[S]struct{}
	order   []S
}

// NewStateSet returns an empty set.
func NewStateSet[S comparable]() *StateSet[S] {
	return &StateSet[S]{members: make(map[S]struct{})}
}

// Has reports membership.
func (s *StateSet[S]) Has(v S) bool {
	_, ok := s.members[v]
	return ok
}

// Add inserts v if absent.
func (s *StateSet[S]) Add(v S) {
	if s.Has(v) {
		return
	}
	s.members[v] = struct{}{}
	s.order = append(s.order, v)
}

// Len returns the number of members.
func (s *StateSet[S]) Len() int { return len(s.order) }

// Items returns the members in insertion order.
func (s *StateSet[S]) Items() []S { return append([]S(nil), s.order...) }

// stack is a LIFO with O(1) membership of the items currently on it.
type stack[S comparable] struct {
	items   []S
	members map[S]struct{}
}

func newStack[S comparable]() *stack[S] {
	return &stack[S]{members: make(map[S]struct{})}
}

func (s *stack[S]) push(v S) {
	s.items = append(s.items, v)
	s.members[v] = struct{}{}
}

func (s *stack[S]) pop() S {
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	delete(s.members, v)
	return v
}

func (s *stack[S]) has(v S) bool {
	_, ok := s.members[v]
	return ok
}

func (s *stack[S]) len() int { return len(s.items) }
