package metrics

import (
	"context"

	coremetrics "github.com/gridstor/battbench/core/metrics"
	"github.com/gridstor/battbench/internal/eventbus"
)

// StartRunCollector subscribes to the event bus and records benchmark events
// on the sink. It stops when the context is canceled.
func StartRunCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case coremetrics.RunResult:
					_ = sink.RecordRunResult(e)
				case coremetrics.RunFailure:
					if r, ok := sink.(coremetrics.RunFailureRecorder); ok {
						_ = r.RecordRunFailure(e)
					}
				case []coremetrics.IntervalFlow:
					if r, ok := sink.(coremetrics.IntervalRecorder); ok {
						_ = r.RecordIntervalFlows(e)
					}
				}
			}
		}
	}()
}
