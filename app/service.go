// Package app wires configuration, market data, the optimizer and the
// observability sinks into a runnable benchmark service.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gridstor/battbench/config"
	"github.com/gridstor/battbench/core/evaluator"
	coremetrics "github.com/gridstor/battbench/core/metrics"
	"github.com/gridstor/battbench/core/model"
	"github.com/gridstor/battbench/core/optimizer"
	"github.com/gridstor/battbench/infra/logger"
	"github.com/gridstor/battbench/infra/marketdata"
	"github.com/gridstor/battbench/infra/metrics"
	"github.com/gridstor/battbench/infra/mqtt"
	"github.com/gridstor/battbench/internal/eventbus"
	"github.com/gridstor/battbench/pkg/export"
)

// Service runs the benchmark over every configured market.
type Service struct {
	cfg   *config.Config
	asset *model.Asset
	bus   eventbus.EventBus
	sink  coremetrics.MetricsSink
	pub   *mqtt.Publisher
	log   logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Pretty); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	asset, err := model.NewAsset(cfg.Asset)
	if err != nil {
		return nil, err
	}

	if err := metrics.RegisterBuiltins(); err != nil {
		return nil, fmt.Errorf("metrics factories: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled {
		pub, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	return &Service{
		cfg:   cfg,
		asset: asset,
		bus:   eventbus.New(),
		sink:  sink,
		pub:   pub,
		log:   logg,
	}, nil
}

// Run benchmarks every market concurrently and blocks until all runs have
// finished or the context is canceled. It returns the joined errors of the
// runs that failed.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartRunCollector(ctx, s.bus, s.sink)
	if s.cfg.PrometheusAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(s.cfg.Markets))
	for _, m := range s.cfg.Markets {
		wg.Add(1)
		go func(m config.MarketConfig) {
			defer wg.Done()
			if err := s.runMarket(ctx, m); err != nil {
				s.bus.Publish(coremetrics.RunFailure{
					Market: m.Name,
					Solver: s.cfg.Optimizer.Solver,
					Reason: err.Error(),
					Time:   time.Now(),
				})
				s.log.Errorf("market %s: %v", m.Name, err)
				errCh <- fmt.Errorf("market %s: %w", m.Name, err)
			}
		}(m)
	}
	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) runMarket(ctx context.Context, m config.MarketConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	series, err := s.loadSeries(m)
	if err != nil {
		return err
	}
	s.log.Infof("market %s: %d intervals of %s", m.Name, series.Len(), series.Duration())

	sched, err := optimizer.Optimize(series, s.asset, s.cfg.Optimizer)
	if err != nil {
		return err
	}
	res, err := evaluator.Evaluate(series, s.asset, sched)
	if err != nil {
		return err
	}
	if err := evaluator.CrossCheck(res, sched); err != nil {
		return err
	}
	s.log.Debugw("run finished", map[string]any{
		"market":    m.Name,
		"run_id":    res.RunID,
		"net_value": res.NetValue,
		"cycles":    res.EquivalentCycles,
	})

	s.publish(m.Name, series, sched, res)
	if s.pub != nil {
		if err := s.pub.PublishResult(m.Name, sched, res); err != nil {
			s.log.Warnf("mqtt publish %s: %v", m.Name, err)
		}
	}
	if s.cfg.Export.Dir != "" {
		if err := s.export(m.Name, series, sched, res); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	s.log.Infof("market %s: net value %.2f over %d intervals (%s, %s)",
		m.Name, res.NetValue, series.Len(), sched.Stats.Solver, sched.Stats.Elapsed.Round(time.Millisecond))
	return nil
}

// loadSeries reads the market file, falling back to the local cache when the
// primary source is unavailable.
func (s *Service) loadSeries(m config.MarketConfig) (*model.PriceSeries, error) {
	records, err := marketdata.Load(m.Path)
	if err != nil {
		if m.CachePath == "" {
			return nil, err
		}
		s.log.Warnf("market %s: %v, falling back to cache %s", m.Name, err, m.CachePath)
		records, err = marketdata.Load(m.CachePath)
		if err != nil {
			return nil, err
		}
	} else if m.CachePath != "" {
		if err := marketdata.UpdateCache(m.CachePath, records); err != nil {
			s.log.Warnf("market %s: cache update: %v", m.Name, err)
		}
	}
	if m.PriceScale != 1 {
		for i := range records {
			records[i].PriceBuy *= m.PriceScale
			records[i].PriceSell *= m.PriceScale
		}
	}
	return model.NewPriceSeries(records)
}

func (s *Service) publish(market string, series *model.PriceSeries, sched *model.Schedule, res *model.BenchmarkResult) {
	now := time.Now()
	s.bus.Publish(coremetrics.RunResult{
		RunID:            res.RunID,
		Market:           market,
		Solver:           sched.Stats.Solver,
		Intervals:        series.Len(),
		NetValue:         res.NetValue,
		Revenue:          res.Revenue,
		ChargeCost:       res.ChargeCost,
		DegradationCost:  res.DegradationCost,
		EquivalentCycles: res.EquivalentCycles,
		SolveTime:        sched.Stats.Elapsed,
		Time:             now,
	})
	flows := make([]coremetrics.IntervalFlow, series.Len())
	for i := range flows {
		flows[i] = coremetrics.IntervalFlow{
			RunID:    res.RunID,
			Market:   market,
			Start:    series.Start(i),
			PowerKW:  sched.PowerKW[i],
			SoC:      sched.SoC[i+1],
			CashFlow: res.CashFlows[i],
		}
	}
	s.bus.Publish(flows)
}

func (s *Service) export(market string, series *model.PriceSeries, sched *model.Schedule, res *model.BenchmarkResult) error {
	if err := os.MkdirAll(s.cfg.Export.Dir, 0o755); err != nil {
		return err
	}
	csvPath := filepath.Join(s.cfg.Export.Dir, market+"_schedule.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	if err := export.WriteScheduleCSV(f, series, sched, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	jsonPath := filepath.Join(s.cfg.Export.Dir, market+"_result.json")
	f, err = os.Create(jsonPath)
	if err != nil {
		return err
	}
	if err := export.WriteResultJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	return nil
}
