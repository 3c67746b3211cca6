package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/epiplan/core/discretize"
	"github.com/kilianp07/epiplan/core/mdp"
)

// lineSim moves a point along [0, 1] by the chosen step. Every step before
// reaching 1 costs one unit.
type lineSim struct{}

func (l *lineSim) Actions() []mdp.Action { return []mdp.Action{0.25, 0.5} }
func (l *lineSim) Start() mdp.State      { return mdp.State{0} }

func (l *lineSim) Simulate(from mdp.State, a mdp.Action) mdp.State {
	return mdp.State{math.Min(1, from[0]+float64(a))}
}

func (l *lineSim) Reward(s mdp.State) float64 {
	if l.IsGoal(s) {
		return 0
	}
	return -1
}

func (l *lineSim) IsGoal(s mdp.State) bool { return s[0] >= 1 }

func TestLRTDPWithSimulatorFindsShortestPath(t *testing.T) {
	sim := &lineSim{}
	policy, values, stats, err := LRTDPWithSimulator(sim, 0.9, 20, 1e-6, WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, mdp.Action(0.5), policy["0"])
	assert.InDelta(t, -1.9, values["0"], 1e-9)
	assert.InDelta(t, -1.0, values["5000"], 1e-9)
	assert.Greater(t, stats.Iterations, 0)
	assert.Greater(t, stats.BellmanBackupsDone, 0)
	assert.Empty(t, stats.MaximumResiduals)

	_, goal := values["10000"]
	assert.False(t, goal, "goal states are never backed up")
	for k := range values {
		_, ok := policy[k]
		assert.True(t, ok, "policy misses %s", k)
	}
}

func TestLRTDPWithSimulatorCoarseDiscretizer(t *testing.T) {
	policy, values, _, err := LRTDPWithSimulator(&lineSim{}, 0.9, 20, 1e-6,
		WithSeed(1), WithDiscretizer(discretize.New(1)))
	require.NoError(t, err)
	// One digit truncates 0.25 to 2, so the slow path runs 0.2, 0.7, 1.
	assert.Equal(t, mdp.Action(0.5), policy["0"])
	assert.InDelta(t, -1.9, values["0"], 1e-9)
	for k := range values {
		assert.NotContains(t, []string{"2500", "5000"}, k)
	}
}

func TestLRTDPWithSimulatorTrialLimit(t *testing.T) {
	_, _, stats, err := LRTDPWithSimulator(&stuckSim{}, 1.0, 5, 1e-6, WithSeed(1), WithMaxTrials(4))
	require.ErrorIs(t, err, ErrTrialLimit)
	assert.Equal(t, 4, stats.Iterations)
}

func TestLRTDPWithSimulatorNil(t *testing.T) {
	_, _, _, err := LRTDPWithSimulator(nil, 0.9, 10, 1e-3)
	assert.Error(t, err)
}

// stuckSim alternates between two states forever and never reaches a goal.
type stuckSim struct{}

func (stuckSim) Actions() []mdp.Action { return []mdp.Action{1} }
func (stuckSim) Start() mdp.State      { return mdp.State{0} }
func (stuckSim) Simulate(from mdp.State, _ mdp.Action) mdp.State {
	return mdp.State{1 - from[0]}
}
func (stuckSim) Reward(mdp.State) float64 { return 1 }
func (stuckSim) IsGoal(mdp.State) bool    { return false }
