package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/epiplan/core/metrics"
)

// PromSink records solver runs in Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	backups  *prometheus.CounterVec
	trials   *prometheus.CounterVec
	residual *prometheus.GaugeVec
	solved   *prometheus.GaugeVec
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epiplan_solves_total",
			Help: "Total number of solver runs",
		}, []string{"algorithm", "converged"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "epiplan_solve_duration_seconds",
			Help:    "Wall time of solver runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epiplan_bellman_backups_total",
			Help: "Total number of Bellman backups performed",
		}, []string{"algorithm"}),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epiplan_lrtdp_trials_total",
			Help: "Total number of LRTDP trials",
		}, []string{"algorithm"}),
		residual: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "epiplan_lrtdp_initial_residual",
			Help: "Residual at the initial state after the latest trial",
		}, []string{"algorithm"}),
		solved: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "epiplan_lrtdp_solved_states",
			Help: "Number of states labeled solved after the latest trial",
		}, []string{"algorithm"}),
	}
	var err error
	if s.solves, err = register(reg, s.solves); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.backups, err = register(reg, s.backups); err != nil {
		return nil, err
	}
	if s.trials, err = register(reg, s.trials); err != nil {
		return nil, err
	}
	if s.residual, err = register(reg, s.residual); err != nil {
		return nil, err
	}
	if s.solved, err = register(reg, s.solved); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve counts the run and observes its duration and backups.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Algorithm, strconv.FormatBool(ev.Converged)).Inc()
	s.duration.WithLabelValues(ev.Algorithm).Observe(ev.Duration.Seconds())
	s.backups.WithLabelValues(ev.Algorithm).Add(float64(ev.Backups))
	return nil
}

// RecordTrial counts the trial and updates the progress gauges.
func (s *PromSink) RecordTrial(ev coremetrics.TrialEvent) error {
	s.trials.WithLabelValues(ev.Algorithm).Inc()
	s.residual.WithLabelValues(ev.Algorithm).Set(ev.Residual)
	s.solved.WithLabelValues(ev.Algorithm).Set(float64(ev.SolvedStates))
	return nil
}
