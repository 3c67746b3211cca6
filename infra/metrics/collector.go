package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/epiplan/core/metrics"
	"github.com/kilianp07/epiplan/infra/logger"
	"github.com/kilianp07/epiplan/internal/eventbus"
)

// collectorBuffer bounds the trial events queued for a slow sink; the bus
// drops events beyond it.
const collectorBuffer = 1024

// StartEventCollector subscribes to the trial bus and forwards events to
// sink when it records trials. The returned channel is closed once the
// collector has stopped, either because ctx was canceled or the bus closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[coremetrics.TrialEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.TrialRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.SubscribeSize(collectorBuffer)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordTrial(ev); err != nil {
					log.Warnf("record trial %d of %s: %v", ev.Trial, ev.RunID, err)
				}
			}
		}
	}()
	return done
}
