package epidemic

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/epiplan/core/mdp"
)

// Positions of the compartments in a SEIR state.
const (
	Susceptible = iota
	Exposed
	Infectious
	Removed
)

// SEIRConfig describes a SEIR simulator.
type SEIRConfig struct {
	// Initial holds the S, E, I and R fractions at the start of an episode.
	Initial []float64 `json:"initial"`
	// R0Values are the available reproduction numbers, one action each.
	R0Values       []float64 `json:"r0_values"`
	DaysPerAction  int       `json:"days_per_action"`
	StepsPerDay    int       `json:"steps_per_day"`
	IncubationDays float64   `json:"incubation_days"`
	InfectiousDays float64   `json:"infectious_days"`
	// GoalInfected ends an episode once E+I falls to this level.
	GoalInfected float64 `json:"goal_infected"`
}

// SetDefaults fills unset fields.
func (c *SEIRConfig) SetDefaults() {
	if len(c.Initial) == 0 {
		c.Initial = []float64{0.99, 0, 0.01, 0}
	}
	if c.DaysPerAction == 0 {
		c.DaysPerAction = 7
	}
	if c.StepsPerDay == 0 {
		c.StepsPerDay = 4
	}
	if c.IncubationDays == 0 {
		c.IncubationDays = 5.2
	}
	if c.InfectiousDays == 0 {
		c.InfectiousDays = 2.9
	}
	if c.GoalInfected == 0 {
		c.GoalInfected = 1e-3
	}
}

// Validate checks the simulator parameters.
func (c SEIRConfig) Validate() error {
	if len(c.Initial) != 4 {
		return fmt.Errorf("initial state needs 4 compartments, got %d", len(c.Initial))
	}
	for _, v := range c.Initial {
		if v < 0 {
			return fmt.Errorf("initial compartments must not be negative")
		}
	}
	if len(c.R0Values) == 0 {
		return fmt.Errorf("at least one r0 value is required")
	}
	if c.DaysPerAction <= 0 || c.StepsPerDay <= 0 {
		return fmt.Errorf("days_per_action and steps_per_day must be positive")
	}
	if c.IncubationDays <= 0 || c.InfectiousDays <= 0 {
		return fmt.Errorf("incubation_days and infectious_days must be positive")
	}
	return nil
}

// SEIRSimulator integrates SEIR dynamics for the duration of one action.
// It holds no episode state, so one value may back several sessions.
type SEIRSimulator struct {
	cfg     SEIRConfig
	actions []mdp.Action
}

// NewSEIRSimulator validates cfg and returns a simulator.
func NewSEIRSimulator(cfg SEIRConfig) (*SEIRSimulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	actions := make([]mdp.Action, len(cfg.R0Values))
	for i, r := range cfg.R0Values {
		actions[i] = mdp.Action(r)
	}
	return &SEIRSimulator{cfg: cfg, actions: actions}, nil
}

func (s *SEIRSimulator) Actions() []mdp.Action { return s.actions }

func (s *SEIRSimulator) Start() mdp.State { return mdp.State(s.cfg.Initial).Clone() }

// Simulate runs DaysPerAction days with reproduction number a using
// fourth-order Runge-Kutta. from is left untouched.
func (s *SEIRSimulator) Simulate(from mdp.State, a mdp.Action) mdp.State {
	x := from.Clone()
	h := 1 / float64(s.cfg.StepsPerDay)
	n := s.cfg.DaysPerAction * s.cfg.StepsPerDay
	k1 := make([]float64, 4)
	k2 := make([]float64, 4)
	k3 := make([]float64, 4)
	k4 := make([]float64, 4)
	tmp := make([]float64, 4)
	for step := 0; step < n; step++ {
		s.derivative(k1, x, float64(a))
		floats.AddScaledTo(tmp, x, h/2, k1)
		s.derivative(k2, tmp, float64(a))
		floats.AddScaledTo(tmp, x, h/2, k2)
		s.derivative(k3, tmp, float64(a))
		floats.AddScaledTo(tmp, x, h, k3)
		s.derivative(k4, tmp, float64(a))

		floats.AddScaled(x, h/6, k1)
		floats.AddScaled(x, h/3, k2)
		floats.AddScaled(x, h/3, k3)
		floats.AddScaled(x, h/6, k4)
	}
	return x
}

func (s *SEIRSimulator) derivative(dst, x []float64, r0 float64) {
	beta := r0 / s.cfg.InfectiousDays
	exposures := beta * x[Susceptible] * x[Infectious]
	onsets := x[Exposed] / s.cfg.IncubationDays
	removals := x[Infectious] / s.cfg.InfectiousDays
	dst[Susceptible] = -exposures
	dst[Exposed] = exposures - onsets
	dst[Infectious] = onsets - removals
	dst[Removed] = removals
}

// Reward is the share of the population not currently infectious.
func (s *SEIRSimulator) Reward(x mdp.State) float64 { return 1 - x[Infectious] }

// IsGoal reports whether the outbreak has died down.
func (s *SEIRSimulator) IsGoal(x mdp.State) bool {
	return x[Exposed]+x[Infectious] <= s.cfg.GoalInfected
}
