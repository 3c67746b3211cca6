package mdp

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Action identifies a decision available in every state. In the epidemic
// models it is the contact-rate multiplier (beta or R0) applied for one step.
type Action float64

func (a Action) String() string { return strconv.FormatFloat(float64(a), 'g', -1, 64) }

// Model is an enumerable MDP. States are ordered and deduplicated; row i of
// Transition(a) is the outgoing distribution of state i and Reward(a) holds
// the immediate reward of taking a from each state.
type Model interface {
	States() []string
	Actions() []Action
	Transition(a Action) mat.Matrix
	Reward(a Action) mat.Vector
}

var (
	// ErrDuplicateState is returned when a state identifier appears twice.
	ErrDuplicateState = errors.New("duplicate state")
	// ErrUnknownAction is returned when an action is not part of the model.
	ErrUnknownAction = errors.New("unknown action")
)

// TableModel stores one dense transition matrix and one reward vector per action.
type TableModel struct {
	states      []string
	index       map[string]int
	actions     []Action
	transitions map[Action]*mat.Dense
	rewards     map[Action]*mat.VecDense
}

// NewTableModel allocates zeroed tables for the given states and actions.
func NewTableModel(states []string, actions []Action) (*TableModel, error) {
	if len(states) == 0 {
		return nil, errors.New("model needs at least one state")
	}
	m := &TableModel{
		states:      append([]string(nil), states...),
		index:       make(map[string]int, len(states)),
		actions:     make([]Action, 0, len(actions)),
		transitions: make(map[Action]*mat.Dense, len(actions)),
		rewards:     make(map[Action]*mat.VecDense, len(actions)),
	}
	for i, s := range states {
		if _, ok := m.index[s]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateState, s)
		}
		m.index[s] = i
	}
	n := len(states)
	for _, a := range actions {
		if _, ok := m.transitions[a]; ok {
			return nil, fmt.Errorf("duplicate action %s", a)
		}
		m.actions = append(m.actions, a)
		m.transitions[a] = mat.NewDense(n, n, nil)
		m.rewards[a] = mat.NewVecDense(n, nil)
	}
	return m, nil
}

func (m *TableModel) States() []string  { return m.states }
func (m *TableModel) Actions() []Action { return m.actions }

// Index returns the position of state in States().
func (m *TableModel) Index(state string) (int, bool) {
	i, ok := m.index[state]
	return i, ok
}

// Transition returns the transition matrix of a, or nil for an unknown action.
func (m *TableModel) Transition(a Action) mat.Matrix {
	t, ok := m.transitions[a]
	if !ok {
		return nil
	}
	return t
}

// Reward returns the reward vector of a, or nil for an unknown action.
func (m *TableModel) Reward(a Action) mat.Vector {
	r, ok := m.rewards[a]
	if !ok {
		return nil
	}
	return r
}

// SetTransition sets the probability of moving from one state index to another under a.
func (m *TableModel) SetTransition(a Action, from, to int, p float64) error {
	t, ok := m.transitions[a]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	if err := m.checkIndex(from); err != nil {
		return err
	}
	if err := m.checkIndex(to); err != nil {
		return err
	}
	t.Set(from, to, p)
	return nil
}

// SetReward sets the immediate reward of taking a from state index s.
func (m *TableModel) SetReward(a Action, s int, r float64) error {
	v, ok := m.rewards[a]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	if err := m.checkIndex(s); err != nil {
		return err
	}
	v.SetVec(s, r)
	return nil
}

func (m *TableModel) checkIndex(i int) error {
	if i < 0 || i >= len(m.states) {
		return fmt.Errorf("state index %d out of range [0,%d)", i, len(m.states))
	}
	return nil
}

// Validate checks that every transition row is a distribution (sums to 1)
// or an absorbing encoding (sums to 0), within tol. Solvers never call it.
func (m *TableModel) Validate(tol float64) error {
	for _, a := range m.actions {
		t := m.transitions[a]
		for i := range m.states {
			row := t.RawRowView(i)
			sum := 0.0
			for j, p := range row {
				if p < 0 {
					return fmt.Errorf("action %s: negative probability at (%s,%s)", a, m.states[i], m.states[j])
				}
				sum += p
			}
			if math.Abs(sum-1) > tol && math.Abs(sum) > tol {
				return fmt.Errorf("action %s: row %s sums to %g", a, m.states[i], sum)
			}
		}
	}
	return nil
}
