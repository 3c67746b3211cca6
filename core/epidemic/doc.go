// Package epidemic builds planning problems for the solver package.
//
// SIRModel is an enumerable MDP over a simplex grid of susceptible, infected
// and recovered fractions. Each action is a contact rate beta; transitions
// are deterministic Euler steps of the SIR equations truncated back onto the
// grid. SEIRSimulator is a continuous simulator whose actions are
// reproduction numbers, meant for solver.LRTDPWithSimulator.
package epidemic
