// Package evaluator replays a computed schedule against the original price
// series, independently of the optimizer's bookkeeping. It produces the
// benchmark metrics and serves as a correctness cross-check on the optimizer.
package evaluator

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/gridstor/battbench/core/model"
)

// ErrValueMismatch flags a disagreement between the evaluator's replayed net
// value and the optimizer's reported objective. It signals a defect in the
// solver, not a problem with the caller's input.
var ErrValueMismatch = errors.New("evaluator/optimizer value mismatch")

// boundsEps tolerates floating-point drift on the replayed SoC trajectory.
const boundsEps = 1e-9

// Evaluate replays the schedule and aggregates the realized economics. It
// verifies that the schedule is aligned with the series, that actions respect
// the asset's power limits and that the replayed SoC trajectory matches the
// one reported by the optimizer.
func Evaluate(series *model.PriceSeries, asset *model.Asset, sched *model.Schedule) (*model.BenchmarkResult, error) {
	if sched.Len() != series.Len() {
		return nil, fmt.Errorf("schedule covers %d intervals, series has %d", sched.Len(), series.Len())
	}
	if len(sched.SoC) != sched.Len()+1 {
		return nil, fmt.Errorf("schedule has %d SoC points, want %d", len(sched.SoC), sched.Len()+1)
	}

	spec := asset.Spec
	hours := series.Hours()
	res := &model.BenchmarkResult{
		RunID:     uuid.NewString(),
		CashFlows: make([]float64, sched.Len()),
	}

	soc := sched.SoC[0]
	for t, power := range sched.PowerKW {
		if power > spec.MaxDischargeKW+boundsEps || -power > spec.MaxChargeKW+boundsEps {
			return nil, fmt.Errorf("interval %d: action %.6f kW exceeds power limits", t, power)
		}
		next, fromGrid, toGrid := asset.Step(soc, power, hours)
		if next < spec.MinSoC-boundsEps || next > spec.MaxSoC+boundsEps {
			return nil, fmt.Errorf("interval %d: SoC %.9f leaves [%.4f, %.4f]", t, next, spec.MinSoC, spec.MaxSoC)
		}
		if math.Abs(next-sched.SoC[t+1]) > 1e-6 {
			return nil, fmt.Errorf("interval %d: replayed SoC %.9f diverges from schedule %.9f", t, next, sched.SoC[t+1])
		}

		revenue := series.Sell(t) * toGrid
		cost := series.Buy(t) * fromGrid
		wear := spec.DegradationCost * (fromGrid + toGrid)
		res.CashFlows[t] = revenue - cost - wear
		res.Revenue += revenue
		res.ChargeCost += cost
		res.DegradationCost += wear
		res.EnergyChargedKWh += fromGrid
		res.EnergyDischargedKWh += toGrid
		soc = next
	}

	res.NetValue = res.Revenue - res.ChargeCost - res.DegradationCost
	res.EquivalentCycles = (res.EnergyChargedKWh + res.EnergyDischargedKWh) / (2 * spec.EnergyCapacityKWh)
	return res, nil
}

// CrossCheck compares the replayed net value against the optimizer's reported
// objective. A mismatch beyond floating-point tolerance is an internal
// invariant violation wrapping ErrValueMismatch.
func CrossCheck(res *model.BenchmarkResult, sched *model.Schedule) error {
	tol := 1e-6 * math.Max(1, math.Abs(sched.Objective))
	if diff := math.Abs(res.NetValue - sched.Objective); diff > tol {
		return fmt.Errorf("%w: evaluator %.9f vs optimizer %.9f", ErrValueMismatch, res.NetValue, sched.Objective)
	}
	return nil
}
