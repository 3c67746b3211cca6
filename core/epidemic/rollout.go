package epidemic

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/kilianp07/epiplan/core/mdp"
)

// ErrDeadEnd is returned when a rollout reaches a state without outgoing transitions.
var ErrDeadEnd = errors.New("state has no outgoing transition")

// RolloutResult is the path followed by a policy.
type RolloutResult struct {
	// Actions[k] was taken in States[k]; States has one more entry than Actions.
	Actions []mdp.Action `json:"actions"`
	States  []string     `json:"states"`
}

// Rollout follows policy from initial for horizon steps, sampling successors
// from the model transitions with rng.
func Rollout(m mdp.Model, policy mdp.Policy, initial string, horizon int, rng *rand.Rand) (RolloutResult, error) {
	states := m.States()
	index := make(map[string]int, len(states))
	for i, s := range states {
		index[s] = i
	}
	cur, ok := index[initial]
	if !ok {
		return RolloutResult{}, fmt.Errorf("unknown initial state %q", initial)
	}
	res := RolloutResult{States: []string{initial}}
	for k := 0; k < horizon; k++ {
		a, ok := policy.Lookup(states[cur])
		if !ok {
			return res, fmt.Errorf("no action for state %s", states[cur])
		}
		t := m.Transition(a)
		if t == nil {
			return res, fmt.Errorf("%w: %s", mdp.ErrUnknownAction, a)
		}
		next := mdp.SampleSuccessor(rng, mdp.Row(t, cur))
		if next < 0 {
			return res, fmt.Errorf("%w: %s", ErrDeadEnd, states[cur])
		}
		res.Actions = append(res.Actions, a)
		res.States = append(res.States, states[next])
		cur = next
	}
	return res, nil
}
