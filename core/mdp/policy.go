package mdp

import "sort"

// Policy maps a state identifier (or discretized key) to its greedy action.
// A state missing from the map has no defined action.
type Policy map[string]Action

// Lookup returns the action chosen for state, if any.
func (p Policy) Lookup(state string) (Action, bool) {
	a, ok := p[state]
	return a, ok
}

// Keys returns the states covered by the policy in sorted order.
func (p Policy) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValueTable is a sparse value function keyed by discretized state. Unseen
// keys read as zero.
type ValueTable map[string]float64

// Get returns the stored value of key or 0.
func (v ValueTable) Get(key string) float64 { return v[key] }

// Statistics summarises one solve.
type Statistics struct {
	// Iterations is the horizon for value iteration and the trial count for LRTDP.
	Iterations         int `json:"iterations"`
	BellmanBackupsDone int `json:"bellman_backups_done"`
	// MaximumResiduals holds the residual at the initial state after each
	// LRTDP trial on an enumerable model.
	MaximumResiduals []float64 `json:"maximum_residuals,omitempty"`
}
