package metrics

import "time"

// RunResult is the aggregate outcome of one benchmark run, as recorded for
// observability sinks.
type RunResult struct {
	RunID            string
	Market           string
	Solver           string
	Intervals        int
	NetValue         float64
	Revenue          float64
	ChargeCost       float64
	DegradationCost  float64
	EquivalentCycles float64
	SolveTime        time.Duration
	Time             time.Time
}

// MetricsSink records benchmark run results for observability purposes.
type MetricsSink interface {
	RecordRunResult(res RunResult) error
}

// RunFailure captures a run that ended in an error.
type RunFailure struct {
	Market string
	Solver string
	Reason string
	Time   time.Time
}

// RunFailureRecorder records failed runs.
type RunFailureRecorder interface {
	RecordRunFailure(ev RunFailure) error
}

// IntervalFlow is the realized dispatch of a single interval, suitable for
// time-series storage.
type IntervalFlow struct {
	RunID    string
	Market   string
	Start    time.Time
	PowerKW  float64
	SoC      float64
	CashFlow float64
}

// IntervalRecorder records per-interval dispatch flows.
type IntervalRecorder interface {
	RecordIntervalFlows(flows []IntervalFlow) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordRunResult implements MetricsSink.
func (NopSink) RecordRunResult(RunResult) error { return nil }
