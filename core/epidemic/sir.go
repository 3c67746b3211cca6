package epidemic

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/kilianp07/epiplan/core/mdp"
)

// ErrOffGrid is returned when a transition lands outside the state grid.
var ErrOffGrid = errors.New("state outside grid")

// RewardWeights scales each compartment in the per-state reward.
type RewardWeights struct {
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Recovered   float64 `json:"recovered"`
}

// DefaultRewardWeights favours healthy populations and penalises infections.
var DefaultRewardWeights = RewardWeights{Susceptible: 10, Infected: -15, Recovered: 5}

// SIRConfig describes an enumerative SIR model.
type SIRConfig struct {
	// Threshold is the grid resolution as a population fraction, e.g. 0.05.
	Threshold float64 `json:"threshold"`
	// InfectionDurationDays sets the recovery rate to 1/duration.
	InfectionDurationDays float64 `json:"infection_duration_days"`
	// Betas are the available contact rates, one action each.
	Betas []float64 `json:"betas"`
	// StepsPerAction is the number of Euler steps applied per decision.
	StepsPerAction int            `json:"steps_per_action"`
	Weights        *RewardWeights `json:"weights"`
}

// SetDefaults fills unset fields.
func (c *SIRConfig) SetDefaults() {
	if c.Threshold == 0 {
		c.Threshold = 0.05
	}
	if c.InfectionDurationDays == 0 {
		c.InfectionDurationDays = 14
	}
	if c.StepsPerAction == 0 {
		c.StepsPerAction = 1
	}
	if c.Weights == nil {
		w := DefaultRewardWeights
		c.Weights = &w
	}
}

// Validate checks that the configuration describes a usable grid.
func (c SIRConfig) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %g", c.Threshold)
	}
	units := math.Round(1 / c.Threshold)
	if math.Abs(units*c.Threshold-1) > 1e-9 {
		return fmt.Errorf("threshold %g does not divide 1", c.Threshold)
	}
	if c.InfectionDurationDays <= 0 {
		return fmt.Errorf("infection_duration_days must be positive")
	}
	if len(c.Betas) == 0 {
		return fmt.Errorf("at least one beta is required")
	}
	if c.StepsPerAction < 0 {
		return fmt.Errorf("steps_per_action must not be negative")
	}
	return nil
}

// grid maps compartments to integer counts of threshold-sized units.
type grid struct {
	threshold float64
	units     int
	width     int
}

func newGrid(threshold float64) grid {
	units := int(math.Round(1 / threshold))
	return grid{threshold: threshold, units: units, width: len(strconv.Itoa(units))}
}

type cell struct{ s, i, r int }

// truncate converts v to units, truncating toward zero. The small offset
// absorbs representation error so that 0.29 maps to 29 units, not 28.
func (g grid) truncate(v float64) int {
	return int(math.Trunc(v*float64(g.units) + math.Copysign(1e-9, v)))
}

// approximate snaps c onto the grid. A negative susceptible count is moved
// into the infected compartment and any truncation residual is assigned to
// the first non-empty compartment of S then I.
func (g grid) approximate(c Compartments) cell {
	x := cell{s: g.truncate(c.S), i: g.truncate(c.I), r: g.truncate(c.R)}
	if x.s < 0 {
		x.i += -x.s
		x.s = 0
	}
	if residual := g.units - (x.s + x.i + x.r); residual != 0 {
		if x.s == 0 {
			x.i += residual
		} else {
			x.s += residual
		}
	}
	return x
}

func (g grid) compartments(x cell) Compartments {
	return Compartments{
		S: float64(x.s) * g.threshold,
		I: float64(x.i) * g.threshold,
		R: float64(x.r) * g.threshold,
	}
}

func (g grid) name(x cell) string {
	return fmt.Sprintf("s_%0*d_i_%0*d_r_%0*d", g.width, x.s, g.width, x.i, g.width, x.r)
}

func (g grid) parse(name string) (cell, error) {
	var x cell
	n, err := fmt.Sscanf(name, "s_%d_i_%d_r_%d", &x.s, &x.i, &x.r)
	if err != nil || n != 3 || g.name(x) != name {
		return cell{}, fmt.Errorf("invalid state name %q", name)
	}
	if x.s < 0 || x.i < 0 || x.r < 0 || x.s+x.i+x.r != g.units {
		return cell{}, fmt.Errorf("%w: %q", ErrOffGrid, name)
	}
	return x, nil
}

// cells enumerates every grid point whose units sum to the whole population.
func (g grid) cells() []cell {
	var out []cell
	for s := 0; s <= g.units; s++ {
		for i := 0; i <= g.units-s; i++ {
			out = append(out, cell{s: s, i: i, r: g.units - s - i})
		}
	}
	return out
}

// SIRModel is an enumerable MDP whose states are SIR grid points named
// s_XX_i_XX_r_XX and whose actions are contact rates.
type SIRModel struct {
	*mdp.TableModel
	cfg  SIRConfig
	grid grid
}

// BuildSIR enumerates the grid, simulates every state under every beta and
// records the deterministic transitions and per-state rewards.
func BuildSIR(cfg SIRConfig) (*SIRModel, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := newGrid(cfg.Threshold)
	cells := g.cells()
	names := make([]string, len(cells))
	for i, x := range cells {
		names[i] = g.name(x)
	}
	sort.Strings(names)

	actions := make([]mdp.Action, len(cfg.Betas))
	for i, b := range cfg.Betas {
		actions[i] = mdp.Action(b)
	}
	table, err := mdp.NewTableModel(names, actions)
	if err != nil {
		return nil, err
	}
	m := &SIRModel{TableModel: table, cfg: cfg, grid: g}

	gamma := 1 / cfg.InfectionDurationDays
	w := *cfg.Weights
	for _, x := range cells {
		from, _ := table.Index(g.name(x))
		c := g.compartments(x)
		reward := (w.Susceptible*c.S + w.Infected*c.I + w.Recovered*c.R) / cfg.Threshold
		for _, a := range actions {
			next := c
			for k := 0; k < cfg.StepsPerAction; k++ {
				next = Step(next, float64(a), gamma)
			}
			target := g.name(g.approximate(next))
			to, ok := table.Index(target)
			if !ok {
				return nil, fmt.Errorf("%w: %s under beta %s from %s", ErrOffGrid, target, a, g.name(x))
			}
			if err := table.SetTransition(a, from, to, 1); err != nil {
				return nil, err
			}
			if err := table.SetReward(a, from, reward); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Config returns the configuration the model was built from, with defaults applied.
func (m *SIRModel) Config() SIRConfig { return m.cfg }

// StateName returns the name of the grid point c snaps to.
func (m *SIRModel) StateName(c Compartments) string {
	return m.grid.name(m.grid.approximate(c))
}

// ParseStateName returns the compartments encoded in a state name.
func (m *SIRModel) ParseStateName(name string) (Compartments, error) {
	x, err := m.grid.parse(name)
	if err != nil {
		return Compartments{}, err
	}
	return m.grid.compartments(x), nil
}

// Trajectory decodes a sequence of state names into S, I and R series.
func (m *SIRModel) Trajectory(names []string) (s, i, r []float64, err error) {
	s = make([]float64, len(names))
	i = make([]float64, len(names))
	r = make([]float64, len(names))
	for k, n := range names {
		c, err := m.ParseStateName(n)
		if err != nil {
			return nil, nil, nil, err
		}
		s[k], i[k], r[k] = c.S, c.I, c.R
	}
	return s, i, r, nil
}
