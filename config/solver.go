package config

import "fmt"

// Algorithms accepted in SolverConfig.Algorithm.
const (
	AlgorithmVI        = "vi"
	AlgorithmLRTDP     = "lrtdp"
	AlgorithmSimulator = "simulator"
)

// SolverConfig selects the solver and its parameters.
type SolverConfig struct {
	Algorithm string  `json:"algorithm"`
	Gamma     float64 `json:"gamma"`
	// Horizon is the number of backward-induction steps of value iteration.
	Horizon  int     `json:"horizon"`
	Epsilon  float64 `json:"epsilon"`
	MaxDepth int     `json:"max_depth"`
	// MaxTrials aborts LRTDP after this many trials; zero disables the bound.
	MaxTrials int `json:"max_trials"`
	// Seed makes LRTDP reproducible; unset seeds from the clock.
	Seed *uint64 `json:"seed"`
	// InitialState names the LRTDP start state; empty uses the model's
	// state closest to 99% susceptible and 1% infected.
	InitialState string   `json:"initial_state"`
	GoalStates   []string `json:"goal_states"`
	// Digits is the discretization precision of the simulator variant.
	Digits int `json:"digits"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmVI
	}
	if c.Gamma == 0 {
		c.Gamma = 0.9
	}
	if c.Horizon == 0 {
		c.Horizon = 100
	}
	if c.Epsilon == 0 {
		c.Epsilon = 1e-4
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 100
	}
	if c.MaxTrials == 0 {
		c.MaxTrials = 100000
	}
	if c.Digits == 0 {
		c.Digits = 4
	}
}

// Validate checks solver parameters.
func (c SolverConfig) Validate() error {
	switch c.Algorithm {
	case AlgorithmVI, AlgorithmLRTDP, AlgorithmSimulator:
	default:
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	if c.Gamma <= 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in (0, 1], got %g", c.Gamma)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must not be negative")
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive")
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive")
	}
	if c.MaxTrials < 0 {
		return fmt.Errorf("max_trials must not be negative")
	}
	if c.Digits < 1 || c.Digits > 15 {
		return fmt.Errorf("digits must be between 1 and 15")
	}
	return nil
}
