package solver

import (
	"fmt"
	"sort"

	"github.com/kilianp07/epiplan/core/discretize"
	"github.com/kilianp07/epiplan/core/mdp"
)

// simulatorSpace keys continuous simulator states with a Discretizer and
// grows a sparse value table over the keys it backs up. Quality uses the
// single deterministic successor returned by the simulator.
type simulatorSpace struct {
	sim     mdp.Simulator
	actions []mdp.Action
	gamma   float64
	disc    discretize.Discretizer
	values  mdp.ValueTable
	decoded map[string]mdp.State
}

func newSimulatorSpace(sim mdp.Simulator, gamma float64, disc discretize.Discretizer) *simulatorSpace {
	return &simulatorSpace{
		sim:     sim,
		actions: sim.Actions(),
		gamma:   gamma,
		disc:    disc,
		values:  mdp.ValueTable{},
		decoded: map[string]mdp.State{},
	}
}

// key discretizes x and remembers the state the key stands for.
func (sp *simulatorSpace) key(x mdp.State) string {
	k := sp.disc.Key(x)
	if _, ok := sp.decoded[k]; !ok {
		back, err := sp.disc.Reconstruct(k)
		if err != nil {
			// Key always yields a decodable key; keep the raw state as a fallback.
			back = x.Clone()
		}
		sp.decoded[k] = back
	}
	return k
}

// state returns the reconstructed state behind k. Keys reach the space only
// through key, so the lookup always succeeds.
func (sp *simulatorSpace) state(k string) mdp.State { return sp.decoded[k] }

func (sp *simulatorSpace) numActions() int         { return len(sp.actions) }
func (sp *simulatorSpace) action(i int) mdp.Action { return sp.actions[i] }
func (sp *simulatorSpace) value(k string) float64  { return sp.values.Get(k) }
func (sp *simulatorSpace) setValue(k string, v float64) {
	sp.values[k] = v
}

func (sp *simulatorSpace) successor(k string, a int) string {
	return sp.key(sp.sim.Simulate(sp.state(k), sp.actions[a]))
}

func (sp *simulatorSpace) quality(k string, a int) float64 {
	return sp.sim.Reward(sp.state(k)) + sp.gamma*sp.values.Get(sp.successor(k, a))
}

func (sp *simulatorSpace) successors(k string, a int) []string {
	return []string{sp.successor(k, a)}
}

func (sp *simulatorSpace) isGoal(k string) bool { return sp.sim.IsGoal(sp.state(k)) }

// sessionWalker commits the greedy action on a live session.
type sessionWalker struct {
	sp      *simulatorSpace
	session *mdp.Session
}

func (w *sessionWalker) start() string { return w.sp.key(w.session.Start()) }

func (w *sessionWalker) step(_ string, a int) (string, bool) {
	return w.sp.key(w.session.Execute(w.sp.actions[a])), true
}

// LRTDPWithSimulator runs LRTDP against a live simulator. States are keyed
// by the configured Discretizer (4 decimals by default) and each trial
// starts from a fresh session at the simulator start state. The policy and
// value table cover every key that received a backup.
func LRTDPWithSimulator(sim mdp.Simulator, gamma float64, maxDepth int, epsilon float64, opts ...Option) (mdp.Policy, mdp.ValueTable, mdp.Statistics, error) {
	if sim == nil {
		return nil, nil, mdp.Statistics{}, fmt.Errorf("nil simulator")
	}
	o := newOptions(opts)
	sp := newSimulatorSpace(sim, gamma, o.disc)
	session := mdp.NewSession(sim)
	initial := sp.key(session.Current())

	d := &driver[string]{
		sp:       sp,
		walk:     &sessionWalker{sp: sp, session: session},
		epsilon:  epsilon,
		maxDepth: maxDepth,
		solved:   NewStateSet[string](),
		opts:     o,
	}
	err := d.run(initial)

	keys := make([]string, 0, len(sp.values))
	for k := range sp.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	policy := computePolicy[string](sp, keys, func(k string) string { return k })
	return policy, sp.values, d.stats, err
}
