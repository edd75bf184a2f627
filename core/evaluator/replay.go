package evaluator

import (
	"fmt"
	"math"

	"github.com/gridstor/battbench/core/model"
)

// BuildSchedule replays a bare power profile against the asset and returns a
// full schedule with the SoC trajectory and realized objective filled in.
// Used when re-evaluating a stored dispatch plan.
func BuildSchedule(series *model.PriceSeries, asset *model.Asset, powersKW []float64) (*model.Schedule, error) {
	if series == nil || asset == nil {
		return nil, fmt.Errorf("evaluator: nil series or asset")
	}
	if len(powersKW) != series.Len() {
		return nil, fmt.Errorf("evaluator: %d powers for %d intervals", len(powersKW), series.Len())
	}
	hours := series.Hours()
	soc := make([]float64, series.Len()+1)
	soc[0] = asset.Spec.InitialSoC
	objective := 0.0
	for i, p := range powersKW {
		if !isFinitePower(p) {
			return nil, fmt.Errorf("evaluator: non-finite power at interval %d", i)
		}
		next, fromGrid, toGrid := asset.Step(soc[i], p, hours)
		soc[i+1] = next
		objective += toGrid*series.Sell(i) - fromGrid*series.Buy(i)
		objective -= (fromGrid + toGrid) * asset.Spec.DegradationCost
	}
	powers := make([]float64, len(powersKW))
	copy(powers, powersKW)
	return &model.Schedule{
		PowerKW:   powers,
		SoC:       soc,
		Objective: objective,
		Stats:     model.SolveStats{Solver: "replay"},
	}, nil
}

func isFinitePower(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0)
}
