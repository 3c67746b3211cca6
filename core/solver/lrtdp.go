package solver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/epiplan/core/mdp"
)

// driver runs LRTDP trials over a space until the initial state is solved.
type driver[S comparable] struct {
	sp       space[S]
	walk     walker[S]
	epsilon  float64
	maxDepth int
	solved   *StateSet[S]
	stats    mdp.Statistics
	opts     options
	// trackResiduals records the initial-state residual after each trial in stats.
	trackResiduals bool
}

func (d *driver[S]) run(initial S) error {
	for !d.solved.Has(initial) {
		if d.opts.maxTrials > 0 && d.stats.Iterations >= d.opts.maxTrials {
			return fmt.Errorf("%w after %d trials", ErrTrialLimit, d.stats.Iterations)
		}
		d.stats.Iterations++
		depth := d.trial()

		r := residual(d.sp, initial)
		if d.trackResiduals {
			d.stats.MaximumResiduals = append(d.stats.MaximumResiduals, r)
		}
		report := TrialReport{
			Trial:           d.stats.Iterations,
			Backups:         d.stats.BellmanBackupsDone,
			SolvedStates:    d.solved.Len(),
			TraceLength:     depth,
			InitialResidual: r,
			InitialSolved:   d.solved.Has(initial),
		}
		d.opts.log.Debugw("lrtdp trial", map[string]any{
			"trial":    report.Trial,
			"backups":  report.Backups,
			"solved":   report.SolvedStates,
			"depth":    report.TraceLength,
			"residual": report.InitialResidual,
		})
		if d.opts.observer != nil {
			d.opts.observer(report)
		}
	}
	return nil
}

// trial performs one forward rollout followed by backward labeling and
// returns the length of the trace.
func (d *driver[S]) trial() int {
	var trace []S
	s := d.walk.start()
	for !d.solved.Has(s) {
		trace = append(trace, s)
		if d.sp.isGoal(s) {
			break
		}

		d.sp.setValue(s, bellmanBackup(d.sp, s))
		d.stats.BellmanBackupsDone++

		a, _, ok := greedyAction(d.sp, s)
		if !ok {
			break
		}
		next, ok := d.walk.step(s, a)
		if !ok {
			break
		}
		s = next

		if len(trace) > d.maxDepth {
			break
		}
	}
	depth := len(trace)

	for len(trace) > 0 {
		s := trace[len(trace)-1]
		trace = trace[:len(trace)-1]
		solved, backups := checkSolved(d.sp, s, d.epsilon, d.solved)
		d.stats.BellmanBackupsDone += backups
		if !solved {
			break
		}
	}
	return depth
}

// LRTDP solves an enumerable model from initialState until it is labeled
// solved within epsilon. Trials stop at goalStates or after maxDepth steps.
// The returned value vector is indexed like m.States(). When the trial bound
// set by WithMaxTrials is hit, the partial solution is returned with
// ErrTrialLimit.
func LRTDP(m mdp.Model, gamma float64, maxDepth int, epsilon float64, initialState string, goalStates []string, opts ...Option) (mdp.Policy, *mat.VecDense, mdp.Statistics, error) {
	states := m.States()
	index := make(map[string]int, len(states))
	for i, s := range states {
		index[s] = i
	}
	initial, ok := index[initialState]
	if !ok {
		return nil, nil, mdp.Statistics{}, fmt.Errorf("%w: initial state %q", ErrUnknownState, initialState)
	}

	values := mat.NewVecDense(len(states), nil)
	sp := newTableSpace(m, gamma, values)
	for _, g := range goalStates {
		i, ok := index[g]
		if !ok {
			return nil, nil, mdp.Statistics{}, fmt.Errorf("%w: goal state %q", ErrUnknownState, g)
		}
		sp.goals[i] = struct{}{}
	}

	o := newOptions(opts)
	d := &driver[int]{
		sp:             sp,
		walk:           &sampler{sp: sp, rng: o.rng, initial: initial},
		epsilon:        epsilon,
		maxDepth:       maxDepth,
		solved:         NewStateSet[int](),
		opts:           o,
		trackResiduals: true,
		stats:          mdp.Statistics{MaximumResiduals: []float64{}},
	}
	err := d.run(initial)
	policy := computePolicy[int](sp, sp.indexes(), sp.name)
	return policy, values, d.stats, err
}
