package optimizer

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/gridstor/battbench/core/model"
)

func TestLPMatchesDPOnSpread(t *testing.T) {
	series := hourlySeries(t, []float64{10, 10}, []float64{10, 50})
	asset := idealAsset(t)

	dp, err := Optimize(series, asset, Config{Solver: SolverDP})
	if err != nil {
		t.Fatalf("dp: %v", err)
	}
	lpSched, err := Optimize(series, asset, Config{Solver: SolverLP})
	if err != nil {
		t.Fatalf("lp: %v", err)
	}
	if lpSched.Stats.Solver != SolverLP {
		t.Errorf("Stats.Solver = %q", lpSched.Stats.Solver)
	}
	if math.Abs(dp.Objective-lpSched.Objective) > 1e-6 {
		t.Errorf("objectives diverge: dp %v vs lp %v", dp.Objective, lpSched.Objective)
	}
	if math.Abs(lpSched.Objective-400) > 1e-6 {
		t.Errorf("lp Objective = %v, want 400", lpSched.Objective)
	}
}

func TestLPMatchesDPWithLosses(t *testing.T) {
	series := hourlySeries(t, []float64{10, 20, 80}, []float64{8, 18, 75})
	a, err := model.NewAsset(model.AssetSpec{
		EnergyCapacityKWh:   20,
		MaxChargeKW:         10,
		MaxDischargeKW:      10,
		ChargeEfficiency:    0.95,
		DischargeEfficiency: 0.95,
		MinSoC:              0,
		MaxSoC:              1,
		InitialSoC:          0,
		DegradationCost:     0.5,
	})
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}

	dp, err := Optimize(series, a, Config{Solver: SolverDP, SoCResolution: 401})
	if err != nil {
		t.Fatalf("dp: %v", err)
	}
	lpSched, err := Optimize(series, a, Config{Solver: SolverLP})
	if err != nil {
		t.Fatalf("lp: %v", err)
	}
	// The discretized DP can only lose value against the continuous LP,
	// and never by more than a grid step's worth.
	if dp.Objective > lpSched.Objective+1e-6 {
		t.Errorf("dp %v beats lp %v", dp.Objective, lpSched.Objective)
	}
	if lpSched.Objective-dp.Objective > 5 {
		t.Errorf("dp %v too far below lp %v", dp.Objective, lpSched.Objective)
	}
}

func TestLPNegativeBuyPriceKeepsScheduleFeasible(t *testing.T) {
	// With a strongly negative buy price and asymmetric power limits the LP
	// optimum charges and discharges at once; the netted residual is a
	// charge a full battery cannot take. The schedule must not pretend
	// otherwise.
	series := hourlySeries(t, []float64{-100, 0.01, 200}, []float64{1, 0.01, 180})
	a, err := model.NewAsset(model.AssetSpec{
		EnergyCapacityKWh:   10,
		MaxChargeKW:         10,
		MaxDischargeKW:      5,
		ChargeEfficiency:    0.9,
		DischargeEfficiency: 0.9,
		MinSoC:              0,
		MaxSoC:              1,
		InitialSoC:          1,
	})
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}

	sched, err := Optimize(series, a, Config{Solver: SolverLP})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	hours := series.Hours()
	for i, p := range sched.PowerKW {
		if p < 0 {
			if maxIn := a.MaxChargeEnergyKWh(sched.SoC[i], hours); -p*hours > maxIn+1e-9 {
				t.Errorf("interval %d: buys %.4f kWh but only %.4f kWh fits at SoC %.4f",
					i, -p*hours, maxIn, sched.SoC[i])
			}
		} else if p > 0 {
			if maxOut := a.MaxDischargeEnergyKWh(sched.SoC[i], hours); p*hours > maxOut+1e-9 {
				t.Errorf("interval %d: sells %.4f kWh but only %.4f kWh available at SoC %.4f",
					i, p*hours, maxOut, sched.SoC[i])
			}
		}
	}
	res, err := evaluatorReplay(series, a, sched)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if math.Abs(res-sched.Objective) > 1e-6*math.Max(1, math.Abs(sched.Objective)) {
		t.Errorf("replayed value %v diverges from objective %v", res, sched.Objective)
	}
}

// evaluatorReplay recomputes the schedule's net value from the asset physics,
// independently of the solver's bookkeeping.
func evaluatorReplay(series *model.PriceSeries, a *model.Asset, sched *model.Schedule) (float64, error) {
	hours := series.Hours()
	soc := sched.SoC[0]
	value := 0.0
	for t, p := range sched.PowerKW {
		next, fromGrid, toGrid := a.Step(soc, p, hours)
		if math.Abs(next-sched.SoC[t+1]) > 1e-6 {
			return 0, fmt.Errorf("interval %d: trajectory diverges (%v vs %v)", t, next, sched.SoC[t+1])
		}
		value += series.Sell(t)*toGrid - series.Buy(t)*fromGrid
		value -= (fromGrid + toGrid) * a.Spec.DegradationCost
		soc = next
	}
	return value, nil
}

func TestLPInfeasible(t *testing.T) {
	series := hourlySeries(t, []float64{10, 10}, []float64{10, 50})
	a, err := model.NewAsset(model.AssetSpec{
		EnergyCapacityKWh:   10,
		MaxChargeKW:         0,
		MaxDischargeKW:      10,
		RoundTripEfficiency: 1,
		MinSoC:              0,
		MaxSoC:              1,
		InitialSoC:          0,
	})
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}
	_, err = Optimize(series, a, Config{Solver: SolverLP, MinFinalSoC: 0.9})
	var infErr *InfeasibleScheduleError
	if !errors.As(err, &infErr) {
		t.Fatalf("expected InfeasibleScheduleError, got %v", err)
	}
}

func TestLPSolverFailureIsWrapped(t *testing.T) {
	orig := lpSolve
	defer func() { lpSolve = orig }()
	lpSolve = func([]float64, mat.Matrix, []float64, mat.Matrix, []float64) ([]float64, error) {
		return nil, fmt.Errorf("singular basis")
	}

	series := hourlySeries(t, []float64{10, 10}, []float64{10, 50})
	_, err := Optimize(series, idealAsset(t), Config{Solver: SolverLP})
	if err == nil {
		t.Fatal("expected error from failing solver")
	}
	var infErr *InfeasibleScheduleError
	if errors.As(err, &infErr) {
		t.Fatal("generic solver failure must not be reported as infeasible")
	}
}
