package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	solves int
	trials int
	err    error
}

func (r *recordSink) RecordSolve(SolveEvent) error {
	r.solves++
	return r.err
}

func (r *recordSink) RecordTrial(TrialEvent) error {
	r.trials++
	return r.err
}

type solveOnly struct{ solves int }

func (s *solveOnly) RecordSolve(SolveEvent) error {
	s.solves++
	return nil
}

// TestMultiSink ensures events are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &solveOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordSolve(SolveEvent{}); err != nil {
		t.Fatalf("record solve: %v", err)
	}
	if err := m.RecordTrial(TrialEvent{}); err != nil {
		t.Fatalf("record trial: %v", err)
	}
	if s1.solves != 1 || s1.trials != 1 || s2.solves != 1 {
		t.Fatalf("events not forwarded: %+v %+v", s1, s2)
	}
}

// TestMultiSink_Errors checks that a failing sink does not stop the others.
func TestMultiSink_Errors(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordSolve(SolveEvent{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s2.solves != 1 {
		t.Fatalf("second sink skipped")
	}
}
