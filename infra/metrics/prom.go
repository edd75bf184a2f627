package metrics

import (
	coremetrics "github.com/gridstor/battbench/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records benchmark runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	netValue  *prometheus.GaugeVec
	cycles    *prometheus.GaugeVec
	solveTime *prometheus.HistogramVec
}

// NewPromSink registers benchmark metrics on the default Prometheus
// registerer. The metrics endpoint is served separately by StartPromServer.
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
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benchmark_runs_total",
			Help: "Total number of completed benchmark runs",
		}, []string{"market", "solver"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benchmark_run_failures_total",
			Help: "Total number of failed benchmark runs",
		}, []string{"market", "solver"}),
		netValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchmark_net_value",
			Help: "Net value of the most recent run per market",
		}, []string{"market", "solver"}),
		cycles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "benchmark_equivalent_cycles",
			Help: "Equivalent full cycles of the most recent run per market",
		}, []string{"market", "solver"}),
		solveTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "benchmark_solve_seconds",
			Help:    "Wall time spent in the optimizer",
			Buckets: prometheus.DefBuckets,
		}, []string{"market", "solver"}),
	}
	for _, c := range []prometheus.Collector{s.runs, s.failures, s.netValue, s.cycles, s.solveTime} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordRunResult updates the per-market run metrics.
func (s *PromSink) RecordRunResult(res coremetrics.RunResult) error {
	s.runs.WithLabelValues(res.Market, res.Solver).Inc()
	s.netValue.WithLabelValues(res.Market, res.Solver).Set(res.NetValue)
	s.cycles.WithLabelValues(res.Market, res.Solver).Set(res.EquivalentCycles)
	s.solveTime.WithLabelValues(res.Market, res.Solver).Observe(res.SolveTime.Seconds())
	return nil
}

// RecordRunFailure increments the failure counter.
func (s *PromSink) RecordRunFailure(ev coremetrics.RunFailure) error {
	s.failures.WithLabelValues(ev.Market, ev.Solver).Inc()
	return nil
}
