package solver

import (
	"math/rand/v2"
	"time"

	"github.com/kilianp07/epiplan/core/discretize"
	"github.com/kilianp07/epiplan/core/logger"
)

// TrialReport describes the solver state at the end of one LRTDP trial.
type TrialReport struct {
	Trial           int
	Backups         int
	SolvedStates    int
	TraceLength     int
	InitialResidual float64
	InitialSolved   bool
}

// Option configures an LRTDP solve.
type Option func(*options)

type options struct {
	rng       *rand.Rand
	maxTrials int
	observer  func(TrialReport)
	log       logger.Logger
	disc      discretize.Discretizer
}

func newOptions(opts []Option) options {
	o := options{log: logger.Nop{}, disc: discretize.New(discretize.DefaultDigits)}
	for _, fn := range opts {
		fn(&o)
	}
	if o.rng == nil {
		seed := uint64(time.Now().UnixNano())
		o.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return o
}

// WithSeed seeds the successor sampler so that solves are reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed>>1)) }
}

// WithRand uses r for successor sampling. r must not be shared with a concurrent solve.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithMaxTrials stops the solve with ErrTrialLimit after n trials. Zero means unbounded.
func WithMaxTrials(n int) Option {
	return func(o *options) { o.maxTrials = n }
}

// WithObserver calls fn after every trial.
func WithObserver(fn func(TrialReport)) Option {
	return func(o *options) { o.observer = fn }
}

// WithLogger logs per-trial progress at debug level.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithDiscretizer sets the state keying used by LRTDPWithSimulator.
func WithDiscretizer(d discretize.Discretizer) Option {
	return func(o *options) { o.disc = d }
}
