package optimizer

import (
	"time"

	"github.com/gridstor/battbench/core/model"
)

// Optimize computes the revenue-maximizing dispatch schedule for the series
// and asset under the given configuration. The schedule is aligned one-to-one
// with the price intervals and immutable once returned.
func Optimize(series *model.PriceSeries, asset *model.Asset, cfg Config) (*model.Schedule, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MinFinalSoC > 0 && cfg.MinFinalSoC > asset.Spec.MaxSoC {
		return nil, &InvalidConfigError{Field: "min_final_soc_fraction", Reason: "exceeds max_soc_fraction"}
	}
	if cfg.Solver == SolverLP {
		return optimizeLP(series, asset, cfg)
	}
	return optimizeDP(series, asset, cfg)
}

// optimizeDP runs the exact dynamic program: a forward sweep of the
// feasible-state tracker over all intervals, then backpointer traversal from
// the best terminal state.
func optimizeDP(series *model.PriceSeries, asset *model.Asset, cfg Config) (*model.Schedule, error) {
	start := time.Now()

	tr := newTracker(series, asset, cfg)
	for t := 0; t < series.Len(); t++ {
		tr.step(t)
	}
	terminal, objective, err := tr.best()
	if err != nil {
		return nil, err
	}
	powers, trajectory := tr.reconstruct(terminal)

	return &model.Schedule{
		PowerKW:   powers,
		SoC:       trajectory,
		Objective: objective,
		Stats: model.SolveStats{
			Solver:        SolverDP,
			Elapsed:       time.Since(start),
			StatesVisited: tr.visited,
		},
	}, nil
}
