package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	coremetrics "github.com/kilianp07/epiplan/core/metrics"
	"github.com/kilianp07/epiplan/internal/eventbus"
)

type trialSink struct {
	mu     sync.Mutex
	trials []int
}

func (s *trialSink) RecordSolve(coremetrics.SolveEvent) error { return nil }

func (s *trialSink) RecordTrial(ev coremetrics.TrialEvent) error {
	s.mu.Lock()
	s.trials = append(s.trials, ev.Trial)
	s.mu.Unlock()
	return nil
}

type solveSink struct{}

func (solveSink) RecordSolve(coremetrics.SolveEvent) error { return nil }

func TestStartEventCollector_DrainsOnClose(t *testing.T) {
	bus := eventbus.NewTyped[coremetrics.TrialEvent]()
	sink := &trialSink{}
	done := StartEventCollector(context.Background(), bus, sink)
	for i := 1; i <= 100; i++ {
		bus.Publish(coremetrics.TrialEvent{Trial: i})
	}
	bus.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
	if len(sink.trials) != 100 || sink.trials[99] != 100 {
		t.Fatalf("expected 100 trials in order, got %d", len(sink.trials))
	}
}

func TestStartEventCollector_StopsOnCancel(t *testing.T) {
	bus := eventbus.NewTyped[coremetrics.TrialEvent]()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, &trialSink{})
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollector_SkipsSinksWithoutTrials(t *testing.T) {
	bus := eventbus.NewTyped[coremetrics.TrialEvent]()
	defer bus.Close()
	done := StartEventCollector(context.Background(), bus, solveSink{})
	select {
	case <-done:
	default:
		t.Fatal("expected collector to return immediately")
	}
}
