package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/gridstor/battbench/core/metrics"
	"github.com/gridstor/battbench/infra/logger"
)

// InfluxSink writes benchmark results to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRunResult writes the aggregate run outcome as a single point.
func (s *InfluxSink) RecordRunResult(res coremetrics.RunResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("benchmark_run").
		AddTag("run_id", res.RunID).
		AddTag("market", res.Market).
		AddTag("solver", res.Solver).
		AddField("net_value", round3(res.NetValue)).
		AddField("revenue", round3(res.Revenue)).
		AddField("charge_cost", round3(res.ChargeCost)).
		AddField("degradation_cost", round3(res.DegradationCost)).
		AddField("equivalent_cycles", round3(res.EquivalentCycles)).
		AddField("intervals", res.Intervals).
		AddField("solve_ms", res.SolveTime.Milliseconds()).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRunFailure writes a failed run as a point.
func (s *InfluxSink) RecordRunFailure(ev coremetrics.RunFailure) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("benchmark_run_failure").
		AddTag("market", ev.Market).
		AddTag("solver", ev.Solver).
		AddField("reason", ev.Reason).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordIntervalFlows writes the per-interval dispatch of a run.
func (s *InfluxSink) RecordIntervalFlows(flows []coremetrics.IntervalFlow) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, f := range flows {
		p := write.NewPointWithMeasurement("benchmark_interval").
			AddTag("run_id", f.RunID).
			AddTag("market", f.Market).
			AddField("power_kw", round3(f.PowerKW)).
			AddField("soc", round3(f.SoC)).
			AddField("cash_flow", round3(f.CashFlow)).
			SetTime(f.Start)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
