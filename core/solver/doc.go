package solver

// Package solver implements dynamic-programming planners over mdp models:
// finite-horizon value iteration and Labeled Real-Time Dynamic Programming
// (LRTDP) for both enumerable models and live simulators.
//
// Both LRTDP variants share one generic implementation of the Bellman
// backup, greedy action selection, the solved-state labeling procedure and
// the trial loop. They differ only in how states are keyed (index vs
// discretized key), how quality is evaluated (full expectation vs one
// deterministic successor) and how a trial moves forward (sampling vs
// executing the action on a session).
