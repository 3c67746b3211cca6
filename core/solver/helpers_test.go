package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/epiplan/core/mdp"
)

const (
	lockdown mdp.Action = 0.5
	open     mdp.Action = 1.0
)

// toyModel is a two-state epidemic caricature:
//
//	open:     healthy -> {0.5 healthy, 0.5 sick}, sick -> {0.2 healthy, 0.8 sick}, R = [3, 0]
//	lockdown: healthy -> {0.9 healthy, 0.1 sick}, sick -> {0.7 healthy, 0.3 sick}, R = [2, 1]
func toyModel(t testing.TB) *mdp.TableModel {
	t.Helper()
	m, err := mdp.NewTableModel([]string{"healthy", "sick"}, []mdp.Action{lockdown, open})
	require.NoError(t, err)
	set := func(a mdp.Action, rows [2][2]float64, rewards [2]float64) {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				require.NoError(t, m.SetTransition(a, i, j, rows[i][j]))
			}
			require.NoError(t, m.SetReward(a, i, rewards[i]))
		}
	}
	set(open, [2][2]float64{{0.5, 0.5}, {0.2, 0.8}}, [2]float64{3, 0})
	set(lockdown, [2][2]float64{{0.9, 0.1}, {0.7, 0.3}}, [2]float64{2, 1})
	require.NoError(t, m.Validate(1e-12))
	return m
}

const step mdp.Action = 1

// chainModel is a deterministic chain a -> b -> goal with goal absorbing.
// Rewards are 1 at a, 2 at b and 0 at goal.
func chainModel(t testing.TB) *mdp.TableModel {
	t.Helper()
	m, err := mdp.NewTableModel([]string{"a", "b", "goal"}, []mdp.Action{step})
	require.NoError(t, err)
	require.NoError(t, m.SetTransition(step, 0, 1, 1))
	require.NoError(t, m.SetTransition(step, 1, 2, 1))
	require.NoError(t, m.SetTransition(step, 2, 2, 1))
	require.NoError(t, m.SetReward(step, 0, 1))
	require.NoError(t, m.SetReward(step, 1, 2))
	return m
}

// loopModel cycles between two states forever, earning 1 per step. The goal
// state is never reachable from the loop.
func loopModel(t testing.TB) *mdp.TableModel {
	t.Helper()
	m, err := mdp.NewTableModel([]string{"x", "y", "goal"}, []mdp.Action{step})
	require.NoError(t, err)
	require.NoError(t, m.SetTransition(step, 0, 1, 1))
	require.NoError(t, m.SetTransition(step, 1, 0, 1))
	require.NoError(t, m.SetTransition(step, 2, 2, 1))
	require.NoError(t, m.SetReward(step, 0, 1))
	require.NoError(t, m.SetReward(step, 1, 1))
	return m
}
