// Package app wires configuration, solvers and infrastructure into the
// operations exposed by the command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/epiplan/config"
	"github.com/kilianp07/epiplan/core/discretize"
	"github.com/kilianp07/epiplan/core/epidemic"
	"github.com/kilianp07/epiplan/core/mdp"
	coremetrics "github.com/kilianp07/epiplan/core/metrics"
	"github.com/kilianp07/epiplan/core/monitoring"
	"github.com/kilianp07/epiplan/core/solver"
	"github.com/kilianp07/epiplan/infra/logger"
	"github.com/kilianp07/epiplan/infra/metrics"
	"github.com/kilianp07/epiplan/infra/mqtt"
	"github.com/kilianp07/epiplan/infra/store"
	"github.com/kilianp07/epiplan/internal/eventbus"
)

// DefaultInitial is the SIR starting point used when no initial state is configured.
var DefaultInitial = epidemic.Compartments{S: 0.9, I: 0.1}

type policyPublisher interface {
	Publish(ctx context.Context, msg mqtt.PolicyMessage) error
	Close() error
}

// Service runs solves and keeps their history.
type Service struct {
	cfg       *config.Config
	sink      coremetrics.MetricsSink
	store     store.Store
	publisher policyPublisher
	log       logger.Logger
	newID     func() string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.Configure(cfg.Logging.Options())
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	st, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	svc := &Service{cfg: cfg, sink: sink, store: st, log: logg, newID: uuid.NewString}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPolicyPublisher(cfg.MQTT)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config { return s.cfg }

// Solve runs algorithm, or the configured one when empty, and persists the
// run. A run stopped by the trial limit is still stored and returned along
// with solver.ErrTrialLimit.
func (s *Service) Solve(ctx context.Context, algorithm string) (store.Record, error) {
	if algorithm == "" {
		algorithm = s.cfg.Solver.Algorithm
	}
	rec := store.Record{
		ID:         s.newID(),
		Algorithm:  algorithm,
		CreatedAt:  time.Now().UTC(),
		Parameters: s.parameters(algorithm),
	}

	bus := eventbus.NewTyped[coremetrics.TrialEvent]()
	collectorCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := metrics.StartEventCollector(collectorCtx, bus, s.sink)
	var lastResidual float64
	observer := func(r solver.TrialReport) {
		lastResidual = r.InitialResidual
		bus.Publish(coremetrics.TrialEvent{
			RunID:        rec.ID,
			Algorithm:    algorithm,
			Trial:        r.Trial,
			Backups:      r.Backups,
			SolvedStates: r.SolvedStates,
			TraceLength:  r.TraceLength,
			Residual:     r.InitialResidual,
			Time:         time.Now(),
		})
	}

	s.log.Infof("solving run %s with %s", rec.ID, algorithm)
	start := time.Now()
	states, solveErr := s.run(algorithm, &rec, observer)
	rec.Duration = time.Since(start)
	bus.Close()
	<-done
	if n := bus.Dropped(); n > 0 {
		s.log.Warnf("run %s: %d trial events dropped by a slow metrics sink", rec.ID, n)
	}
	if solveErr != nil && !errors.Is(solveErr, solver.ErrTrialLimit) {
		monitoring.CaptureException(solveErr, map[string]string{"run_id": rec.ID, "algorithm": algorithm})
		return store.Record{}, solveErr
	}
	if solveErr != nil {
		rec.Error = solveErr.Error()
		s.log.Warnf("run %s: %v", rec.ID, solveErr)
	}

	if err := s.sink.RecordSolve(coremetrics.SolveEvent{
		RunID:      rec.ID,
		Algorithm:  algorithm,
		Iterations: rec.Statistics.Iterations,
		Backups:    rec.Statistics.BellmanBackupsDone,
		States:     states,
		Residual:   lastResidual,
		Converged:  solveErr == nil,
		Duration:   rec.Duration,
		Time:       rec.CreatedAt,
	}); err != nil {
		s.log.Warnf("record solve %s: %v", rec.ID, err)
	}
	if err := s.store.Append(ctx, rec); err != nil {
		err = fmt.Errorf("store run %s: %w", rec.ID, err)
		monitoring.CaptureException(err, map[string]string{"run_id": rec.ID, "algorithm": algorithm})
		return rec, err
	}
	if s.publisher != nil {
		msg := mqtt.PolicyMessage{
			RunID:      rec.ID,
			Algorithm:  algorithm,
			CreatedAt:  rec.CreatedAt,
			Statistics: rec.Statistics,
			Policy:     rec.Policy,
		}
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.log.Errorf("publish run %s: %v", rec.ID, err)
		}
	}
	s.log.Infof("run %s done: %d iterations, %d backups, %d states in %s",
		rec.ID, rec.Statistics.Iterations, rec.Statistics.BellmanBackupsDone, states, rec.Duration)
	return rec, solveErr
}

// run fills the policy, values and statistics of rec and returns the number of states.
func (s *Service) run(algorithm string, rec *store.Record, observer func(solver.TrialReport)) (int, error) {
	sc := s.cfg.Solver
	switch algorithm {
	case config.AlgorithmVI:
		m, err := epidemic.BuildSIR(s.cfg.Model)
		if err != nil {
			return 0, err
		}
		policy, values, stats := solver.FiniteHorizonValueIteration(m, sc.Gamma, sc.Horizon)
		rec.Policy, rec.Values, rec.Statistics = policy, valueTable(m.States(), values), stats
		return len(m.States()), nil
	case config.AlgorithmLRTDP:
		m, err := epidemic.BuildSIR(s.cfg.Model)
		if err != nil {
			return 0, err
		}
		initial := s.initialState(m)
		rec.Parameters.InitialState = initial
		policy, values, stats, err := solver.LRTDP(m, sc.Gamma, sc.MaxDepth, sc.Epsilon,
			initial, sc.GoalStates, s.solverOptions(observer)...)
		if err != nil && !errors.Is(err, solver.ErrTrialLimit) {
			return 0, err
		}
		rec.Policy, rec.Values, rec.Statistics = policy, valueTable(m.States(), values), stats
		return len(m.States()), err
	case config.AlgorithmSimulator:
		sim, err := epidemic.NewSEIRSimulator(s.cfg.Simulator)
		if err != nil {
			return 0, err
		}
		opts := append(s.solverOptions(observer), solver.WithDiscretizer(discretize.New(sc.Digits)))
		policy, values, stats, err := solver.LRTDPWithSimulator(sim, sc.Gamma, sc.MaxDepth, sc.Epsilon, opts...)
		if err != nil && !errors.Is(err, solver.ErrTrialLimit) {
			return 0, err
		}
		rec.Policy, rec.Values, rec.Statistics = policy, values, stats
		return len(values), err
	default:
		return 0, fmt.Errorf("unknown algorithm %q", algorithm)
	}
}

func (s *Service) solverOptions(observer func(solver.TrialReport)) []solver.Option {
	sc := s.cfg.Solver
	opts := []solver.Option{
		solver.WithMaxTrials(sc.MaxTrials),
		solver.WithObserver(observer),
		solver.WithLogger(logger.New("lrtdp")),
	}
	if sc.Seed != nil {
		opts = append(opts, solver.WithSeed(*sc.Seed))
	}
	return opts
}

func (s *Service) parameters(algorithm string) store.Parameters {
	sc := s.cfg.Solver
	p := store.Parameters{Gamma: sc.Gamma}
	if sc.Seed != nil {
		p.Seed = *sc.Seed
	}
	switch algorithm {
	case config.AlgorithmVI:
		p.Horizon = sc.Horizon
	default:
		p.Epsilon = sc.Epsilon
		p.MaxDepth = sc.MaxDepth
		p.MaxTrials = sc.MaxTrials
		if algorithm == config.AlgorithmLRTDP {
			p.GoalStates = sc.GoalStates
		}
	}
	return p
}

func (s *Service) initialState(m *epidemic.SIRModel) string {
	if s.cfg.Solver.InitialState != "" {
		return s.cfg.Solver.InitialState
	}
	return m.StateName(DefaultInitial)
}

// History returns stored runs matching q.
func (s *Service) History(ctx context.Context, q store.Query) ([]store.Record, error) {
	return s.store.Query(ctx, q)
}

// Trajectory is a rollout of a stored SIR policy.
type Trajectory struct {
	epidemic.RolloutResult
	Susceptible []float64 `json:"susceptible"`
	Infected    []float64 `json:"infected"`
	Recovered   []float64 `json:"recovered"`
}

// Rollout follows the policy of a stored vi or lrtdp run on the configured
// SIR model, starting from initial or the default initial state.
func (s *Service) Rollout(rec store.Record, initial string, horizon int) (Trajectory, error) {
	if rec.Algorithm == config.AlgorithmSimulator {
		return Trajectory{}, fmt.Errorf("run %s: rollout needs an enumerable model", rec.ID)
	}
	m, err := epidemic.BuildSIR(s.cfg.Model)
	if err != nil {
		return Trajectory{}, err
	}
	if initial == "" {
		initial = s.initialState(m)
	}
	seed := uint64(time.Now().UnixNano())
	if s.cfg.Solver.Seed != nil {
		seed = *s.cfg.Solver.Seed
	}
	res, err := epidemic.Rollout(m, rec.Policy, initial, horizon, rand.New(rand.NewPCG(seed, seed>>1)))
	tr := Trajectory{RolloutResult: res}
	if len(res.States) > 0 {
		var terr error
		tr.Susceptible, tr.Infected, tr.Recovered, terr = m.Trajectory(res.States)
		if err == nil {
			err = terr
		}
	}
	return tr, err
}

// Close releases the store, the publisher and closable sinks.
func (s *Service) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if c, ok := s.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

func valueTable(states []string, v *mat.VecDense) mdp.ValueTable {
	out := make(mdp.ValueTable, len(states))
	if v == nil {
		return out
	}
	for i, name := range states {
		out[name] = v.AtVec(i)
	}
	return out
}
