package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRunResult forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRunResult(res RunResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordRunResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunFailure forwards failures to sinks that support them.
func (m *MultiSink) RecordRunFailure(ev RunFailure) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunFailureRecorder); ok {
			if err := rec.RecordRunFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordIntervalFlows forwards per-interval flows to sinks that support them.
func (m *MultiSink) RecordIntervalFlows(flows []IntervalFlow) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(IntervalRecorder); ok {
			if err := rec.RecordIntervalFlows(flows); err != nil {
				return err
			}
		}
	}
	return nil
}
