package solver

import "errors"

var (
	// ErrUnknownState is returned when an initial or goal state is not part of the model.
	ErrUnknownState = errors.New("unknown state")
	// ErrTrialLimit is returned when LRTDP exceeds the configured trial bound
	// before the initial state is solved, typically because no goal is reachable.
	ErrTrialLimit = errors.New("trial limit reached before initial state was solved")
)
