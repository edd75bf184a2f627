package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/gridstor/battbench/core/metrics"
)

func TestPromSinkRecordsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	res := coremetrics.RunResult{
		RunID:            "r1",
		Market:           "dayahead",
		Solver:           "dp",
		NetValue:         400,
		EquivalentCycles: 1,
		SolveTime:        50 * time.Millisecond,
		Time:             time.Now(),
	}
	require.NoError(t, sink.RecordRunResult(res))
	require.NoError(t, sink.RecordRunResult(res))
	require.NoError(t, sink.RecordRunFailure(coremetrics.RunFailure{Market: "dayahead", Solver: "dp"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.runs.WithLabelValues("dayahead", "dp")))
	assert.Equal(t, 400.0, testutil.ToFloat64(sink.netValue.WithLabelValues("dayahead", "dp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.failures.WithLabelValues("dayahead", "dp")))
}

func TestHandlerServesSinkRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordRunResult(coremetrics.RunResult{
		Market: "dayahead", Solver: "dp", NetValue: 400, Time: time.Now(),
	}))

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "benchmark_runs_total"), "missing run counter in scrape")
	assert.True(t, strings.Contains(string(body), "benchmark_net_value"), "missing net value gauge in scrape")
}
