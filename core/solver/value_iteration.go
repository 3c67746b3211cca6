package solver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/epiplan/core/mdp"
)

// FiniteHorizonValueIteration runs synchronous backward induction for
// horizon steps: each step backs up every state against the vector of the
// previous step. The policy is greedy with respect to the final vector.
// A non-positive horizon returns a zero vector and an empty policy.
func FiniteHorizonValueIteration(m mdp.Model, gamma float64, horizon int) (mdp.Policy, *mat.VecDense, mdp.Statistics) {
	n := len(m.States())
	last := zeroVector(n)
	stats := mdp.Statistics{}
	if horizon <= 0 {
		return mdp.Policy{}, last, stats
	}

	sp := newTableSpace(m, gamma, last)
	for step := horizon - 1; step >= 0; step-- {
		current := zeroVector(n)
		for s := 0; s < n; s++ {
			current.SetVec(s, bellmanBackup[int](sp, s))
			stats.BellmanBackupsDone++
		}
		last = current
		sp.values = last
		stats.Iterations++
	}

	return computePolicy[int](sp, sp.indexes(), sp.name), last, stats
}

func zeroVector(n int) *mat.VecDense {
	if n == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(n, nil)
}
