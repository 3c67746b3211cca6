package mdp

// State is a continuous simulator state, one entry per compartment.
type State []float64

// Clone returns a copy of s.
func (s State) Clone() State { return append(State(nil), s...) }

// Simulator is a live, deterministic environment. Simulate answers "what
// would happen" from an arbitrary state and must not mutate the simulator.
type Simulator interface {
	Actions() []Action
	Start() State
	Simulate(from State, a Action) State
	Reward(s State) float64
	IsGoal(s State) bool
}

// Session owns the mutable current state of one walk through a simulator.
// A session must not be shared between concurrent solves.
type Session struct {
	sim     Simulator
	current State
}

// NewSession opens a session positioned at the simulator start state.
func NewSession(sim Simulator) *Session {
	s := &Session{sim: sim}
	s.Start()
	return s
}

// Start resets the session to the simulator start state and returns it.
func (s *Session) Start() State {
	s.current = s.sim.Start().Clone()
	return s.current.Clone()
}

// Current returns a copy of the current state.
func (s *Session) Current() State { return s.current.Clone() }

// Simulate reports the outcome of a from the current state without committing it.
func (s *Session) Simulate(a Action) State { return s.sim.Simulate(s.current, a) }

// Execute applies a, moves the session to the resulting state and returns it.
func (s *Session) Execute(a Action) State {
	s.current = s.sim.Simulate(s.current, a).Clone()
	return s.current.Clone()
}
