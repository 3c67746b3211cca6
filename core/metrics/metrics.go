package metrics

import "time"

// SolveEvent summarises one completed solver run.
type SolveEvent struct {
	RunID      string
	Algorithm  string
	Iterations int
	Backups    int
	States     int
	// Residual is the last initial-state residual for LRTDP runs and zero otherwise.
	Residual  float64
	Converged bool
	Duration  time.Duration
	Time      time.Time
}

// TrialEvent describes the state of an LRTDP run after one trial.
type TrialEvent struct {
	RunID        string
	Algorithm    string
	Trial        int
	Backups      int
	SolvedStates int
	TraceLength  int
	Residual     float64
	Time         time.Time
}

// MetricsSink records completed solver runs.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// TrialRecorder is implemented by sinks able to record per-trial progress.
type TrialRecorder interface {
	RecordTrial(ev TrialEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }
func (NopSink) RecordTrial(TrialEvent) error { return nil }
