package metrics

import (
	"fmt"
	"sync"

	"github.com/gridstor/battbench/core/factory"
	coremetrics "github.com/gridstor/battbench/core/metrics"
)

var builtinsOnce sync.Once

// RegisterBuiltins registers the sink factories shipped with the benchmark:
// "prom", "influx" and "nop". Safe to call more than once.
func RegisterBuiltins() error {
	var err error
	builtinsOnce.Do(func() { err = registerBuiltins() })
	return err
}

func registerBuiltins() error {
	if err := coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	}); err != nil {
		return err
	}
	if err := coremetrics.RegisterMetricsSink("prom", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	}); err != nil {
		return err
	}
	return coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" {
			return nil, fmt.Errorf("influx sink: url is required")
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
