package mdp

// Package mdp defines the Markov Decision Process vocabulary shared by the
// solvers: table-backed models, live simulators, policies, value tables and
// solve statistics. Models are read-only to the solvers.
