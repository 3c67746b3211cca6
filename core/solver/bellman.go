package solver

import (
	"math"

	"github.com/kilianp07/epiplan/core/mdp"
)

// bellmanBackup returns the best action quality at s. A space without
// actions leaves the value unchanged.
func bellmanBackup[S comparable](sp space[S], s S) float64 {
	n := sp.numActions()
	if n == 0 {
		return sp.value(s)
	}
	best := math.Inf(-1)
	for a := 0; a < n; a++ {
		if q := sp.quality(s, a); q > best {
			best = q
		}
	}
	return best
}

// greedyAction returns the position and quality of the first action
// reaching the maximum quality. ok is false when no action is available.
func greedyAction[S comparable](sp space[S], s S) (a int, q float64, ok bool) {
	a, q = -1, math.Inf(-1)
	for i := 0; i < sp.numActions(); i++ {
		if qi := sp.quality(s, i); qi > q {
			a, q = i, qi
		}
	}
	return a, q, a >= 0
}

// residual is the gap between the stored value of s and its greedy quality.
func residual[S comparable](sp space[S], s S) float64 {
	_, q, ok := greedyAction(sp, s)
	if !ok {
		return 0
	}
	return math.Abs(sp.value(s) - q)
}

// computePolicy maps each key to the greedy action of its state.
func computePolicy[S comparable](sp space[S], states []S, name func(S) string) mdp.Policy {
	policy := make(mdp.Policy, len(states))
	for _, s := range states {
		if a, _, ok := greedyAction(sp, s); ok {
			policy[name(s)] = sp.action(a)
		}
	}
	return policy
}
