package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	runs     []RunResult
	failures []RunFailure
	flows    [][]IntervalFlow
}

func (r *recordingSink) RecordRunResult(res RunResult) error { r.runs = append(r.runs, res); return nil }
func (r *recordingSink) RecordRunFailure(ev RunFailure) error {
	r.failures = append(r.failures, ev)
	return nil
}
func (r *recordingSink) RecordIntervalFlows(f []IntervalFlow) error {
	r.flows = append(r.flows, f)
	return nil
}

func TestMultiSinkFanout(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, NopSink{}, b)

	res := RunResult{RunID: "r1", Market: "dayahead", NetValue: 42, Time: time.Now()}
	assert.NoError(t, m.RecordRunResult(res))
	assert.Len(t, a.runs, 1)
	assert.Len(t, b.runs, 1)
	assert.Equal(t, "dayahead", a.runs[0].Market)

	assert.NoError(t, m.RecordRunFailure(RunFailure{Market: "imbalance", Reason: "infeasible"}))
	assert.Len(t, a.failures, 1)

	assert.NoError(t, m.RecordIntervalFlows([]IntervalFlow{{RunID: "r1"}}))
	assert.Len(t, b.flows, 1)
}
