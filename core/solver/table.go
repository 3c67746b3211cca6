package solver

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/epiplan/core/mdp"
)

// tableSpace evaluates an enumerable model against a dense value vector.
// States are addressed by their index in Model.States().
type tableSpace struct {
	states  []string
	actions []mdp.Action
	trans   []mat.Matrix
	rewards []mat.Vector
	gamma   float64
	values  *mat.VecDense
	goals   map[int]struct{}
}

func newTableSpace(m mdp.Model, gamma float64, values *mat.VecDense) *tableSpace {
	actions := m.Actions()
	sp := &tableSpace{
		states:  m.States(),
		actions: actions,
		trans:   make([]mat.Matrix, len(actions)),
		rewards: make([]mat.Vector, len(actions)),
		gamma:   gamma,
		values:  values,
		goals:   map[int]struct{}{},
	}
	for i, a := range actions {
		sp.trans[i] = m.Transition(a)
		sp.rewards[i] = m.Reward(a)
	}
	return sp
}

func (sp *tableSpace) numActions() int         { return len(sp.actions) }
func (sp *tableSpace) action(i int) mdp.Action { return sp.actions[i] }
func (sp *tableSpace) value(s int) float64     { return sp.values.AtVec(s) }
func (sp *tableSpace) setValue(s int, v float64) {
	sp.values.SetVec(s, v)
}

func (sp *tableSpace) quality(s, a int) float64 {
	expected := mat.Dot(mdp.Row(sp.trans[a], s), sp.values)
	return sp.rewards[a].AtVec(s) + sp.gamma*expected
}

func (sp *tableSpace) successors(s, a int) []int {
	return mdp.ReachableStates(mdp.Row(sp.trans[a], s))
}

func (sp *tableSpace) isGoal(s int) bool {
	_, ok := sp.goals[s]
	return ok
}

func (sp *tableSpace) name(s int) string { return sp.states[s] }

func (sp *tableSpace) indexes() []int {
	out := make([]int, len(sp.states))
	for i := range out {
		out[i] = i
	}
	return out
}

func (sp *tableSpace) actionIndex(a mdp.Action) (int, bool) {
	for i, b := range sp.actions {
		if a == b {
			return i, true
		}
	}
	return -1, false
}

// sampler moves through an enumerable model by sampling successors.
type sampler struct {
	sp      *tableSpace
	rng     *rand.Rand
	initial int
}

func (w *sampler) start() int { return w.initial }

func (w *sampler) step(s, a int) (int, bool) {
	next := mdp.SampleSuccessor(w.rng, mdp.Row(w.sp.trans[a], s))
	return next, next >= 0
}

// Bellman exposes the backup primitives for an enumerable model and a value
// vector it does not own. Backups never write to the vector; CheckSolved does.
type Bellman struct {
	sp *tableSpace
}

// NewBellman binds m, gamma and values. values must have one entry per state.
func NewBellman(m mdp.Model, gamma float64, values *mat.VecDense) *Bellman {
	return &Bellman{sp: newTableSpace(m, gamma, values)}
}

// Quality is R(a)[s] + gamma * sum_n T(a)[s,n] * V[n]. Unknown actions yield false.
func (b *Bellman) Quality(s int, a mdp.Action) (float64, bool) {
	i, ok := b.sp.actionIndex(a)
	if !ok {
		return 0, false
	}
	return b.sp.quality(s, i), true
}

// Backup returns the maximum quality at s.
func (b *Bellman) Backup(s int) float64 { return bellmanBackup[int](b.sp, s) }

// GreedyAction returns the first action achieving the maximum quality at s.
func (b *Bellman) GreedyAction(s int) (mdp.Action, bool) {
	a, _, ok := greedyAction[int](b.sp, s)
	if !ok {
		return 0, false
	}
	return b.sp.action(a), true
}

// Residual is |V[s] - quality(s, greedy(s))|.
func (b *Bellman) Residual(s int) float64 { return residual[int](b.sp, s) }

// CheckSolved runs the labeling procedure rooted at s, adding converged
// states to solved or backing up the visited states in place.
func (b *Bellman) CheckSolved(s int, epsilon float64, solved *StateSet[int]) (bool, int) {
	return checkSolved[int](b.sp, s, epsilon, solved)
}

// Policy returns the greedy action of every state.
func (b *Bellman) Policy() mdp.Policy {
	return computePolicy[int](b.sp, b.sp.indexes(), b.sp.name)
}

// MaxResidual returns the largest absolute difference between two value vectors.
func MaxResidual(a, b *mat.VecDense) float64 {
	if a.Len() == 0 {
		return 0
	}
	var diff mat.VecDense
	diff.SubVec(a, b)
	return mat.Norm(&diff, math.Inf(1))
}
