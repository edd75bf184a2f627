package optimizer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/gridstor/battbench/core/model"
)

// lpTol is the pivot tolerance handed to the simplex solver.
const lpTol = 1e-7

// lpSolve points to the simplex invocation so tests can simulate solver
// failures.
var lpSolve = func(c []float64, g mat.Matrix, h []float64, a mat.Matrix, b []float64) ([]float64, error) {
	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, lpTol, nil)
	return sol, err
}

// optimizeLP solves the same problem as the dynamic program as a linear
// program over per-interval charge and discharge variables (grid-side kW),
// mirroring the benchmark's original formulation. The two variables of an
// interval are netted into a single action afterwards, and the reported
// objective is the replayed value of that netted schedule so the evaluator
// cross-check holds by construction.
func optimizeLP(series *model.PriceSeries, asset *model.Asset, cfg Config) (*model.Schedule, error) {
	start := time.Now()

	spec := asset.Spec
	steps := series.Len()
	n := 2 * steps
	hours := series.Hours()
	etaC := asset.ChargeEfficiency()
	etaD := asset.DischargeEfficiency()
	capKWh := spec.EnergyCapacityKWh
	initKWh := spec.InitialSoC * capKWh

	// Minimize the negated net value.
	c := make([]float64, n)
	for t := 0; t < steps; t++ {
		c[t] = (series.Buy(t) + spec.DegradationCost) * hours
		c[steps+t] = (-series.Sell(t) + spec.DegradationCost) * hours
	}

	rows := 6 * steps
	if cfg.MaxCycles > 0 {
		rows++
	}
	if cfg.MinFinalSoC > 0 {
		rows++
	}
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	row := 0

	// Per-variable bounds: power limit, volume cap, non-negativity.
	for t := 0; t < steps; t++ {
		chargeCap := math.Min(spec.MaxChargeKW, series.VolumeCap(t)/hours)
		dischargeCap := math.Min(spec.MaxDischargeKW, series.VolumeCap(t)/hours)
		g.Set(row, t, 1)
		h[row] = chargeCap
		row++
		g.Set(row, t, -1)
		h[row] = 0
		row++
		g.Set(row, steps+t, 1)
		h[row] = dischargeCap
		row++
		g.Set(row, steps+t, -1)
		h[row] = 0
		row++
	}

	// Stored energy at every interval boundary stays within the SoC bounds.
	for k := 1; k <= steps; k++ {
		upper := row
		lower := row + 1
		for t := 0; t < k; t++ {
			g.Set(upper, t, etaC*hours)
			g.Set(upper, steps+t, -hours/etaD)
			g.Set(lower, t, -etaC*hours)
			g.Set(lower, steps+t, hours/etaD)
		}
		h[upper] = spec.MaxSoC*capKWh - initKWh
		h[lower] = initKWh - spec.MinSoC*capKWh
		row += 2
	}

	if cfg.MaxCycles > 0 {
		for t := 0; t < steps; t++ {
			g.Set(row, t, hours)
			g.Set(row, steps+t, hours)
		}
		h[row] = cfg.MaxCycles * 2 * capKWh
		row++
	}
	if cfg.MinFinalSoC > 0 {
		for t := 0; t < steps; t++ {
			g.Set(row, t, -etaC*hours)
			g.Set(row, steps+t, hours/etaD)
		}
		h[row] = initKWh - cfg.MinFinalSoC*capKWh
		row++
	}

	var a mat.Matrix
	var b []float64
	if cfg.RequireReturnToInitialSoC {
		eq := mat.NewDense(1, n, nil)
		for t := 0; t < steps; t++ {
			eq.Set(0, t, etaC*hours)
			eq.Set(0, steps+t, -hours/etaD)
		}
		a = eq
		b = []float64{0}
	}

	sol, err := lpSolve(c, g, h, a, b)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, &InfeasibleScheduleError{Reason: "lp has no feasible solution"}
		}
		return nil, fmt.Errorf("lp solve: %w", err)
	}

	// Net the two directions into one signed action per interval and replay
	// it through the asset physics.
	powers := make([]float64, steps)
	trajectory := make([]float64, steps+1)
	trajectory[0] = spec.InitialSoC
	objective := 0.0
	for t := 0; t < steps; t++ {
		charge := clampLP(sol[t]-sol[n+t], math.Min(spec.MaxChargeKW, series.VolumeCap(t)/hours))
		discharge := clampLP(sol[steps+t]-sol[n+steps+t], math.Min(spec.MaxDischargeKW, series.VolumeCap(t)/hours))
		power := discharge - charge
		// Under a strongly negative buy price the optimum can charge and
		// discharge in the same interval; the netted residual may then
		// exceed what the replayed SoC can absorb. Cap it by the energy
		// actually transferable so the schedule stays feasible.
		if power < 0 {
			if maxIn := asset.MaxChargeEnergyKWh(trajectory[t], hours); -power*hours > maxIn {
				power = -maxIn / hours
			}
		} else if power > 0 {
			if maxOut := asset.MaxDischargeEnergyKWh(trajectory[t], hours); power*hours > maxOut {
				power = maxOut / hours
			}
		}
		if math.Abs(power) < 1e-9 {
			power = 0
		}
		powers[t] = power

		next, fromGrid, toGrid := asset.Step(trajectory[t], power, hours)
		trajectory[t+1] = next
		objective += series.Sell(t)*toGrid - series.Buy(t)*fromGrid - spec.DegradationCost*(fromGrid+toGrid)
	}

	return &model.Schedule{
		PowerKW:   powers,
		SoC:       trajectory,
		Objective: objective,
		Stats: model.SolveStats{
			Solver:  SolverLP,
			Elapsed: time.Since(start),
		},
	}, nil
}

func clampLP(v, hi float64) float64 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
