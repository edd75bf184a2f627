package optimizer

import (
	"math"
	"sort"

	"github.com/gridstor/battbench/core/model"
)

// reachEps absorbs floating-point drift when comparing SoC fractions
// against reachability bounds.
const reachEps = 1e-12

// tracker maintains the reachable state space of the dynamic program: for
// every (SoC level, cycle-budget level) pair the best cumulative value seen so
// far and the backpointer that achieved it. States are flat integer indices
// into fixed-size arrays, soc*cycleLevels + cycle. Only two value layers are
// kept; backpointers are stored per step for path reconstruction.
type tracker struct {
	asset  *model.Asset
	series *model.PriceSeries
	cfg    Config

	soc     []float64 // SoC level values (fractions), ascending
	initIdx int

	cycleLevels int
	cycleStep   float64 // grid-side kWh per budget level, 0 when uncapped

	value []float64
	next  []float64

	prevState [][]int32
	prevPower [][]float64

	visited int
}

func newTracker(series *model.PriceSeries, asset *model.Asset, cfg Config) *tracker {
	spec := asset.Spec

	var soc []float64
	initIdx := 0
	if spec.MaxSoC == spec.MinSoC {
		soc = []float64{spec.InitialSoC}
	} else {
		g := cfg.SoCResolution
		soc = make([]float64, g)
		width := (spec.MaxSoC - spec.MinSoC) / float64(g-1)
		for i := range soc {
			soc[i] = spec.MinSoC + float64(i)*width
		}
		soc[g-1] = spec.MaxSoC
		// Replace the nearest level with the exact initial SoC so the
		// trajectory starts, and can return, exactly there.
		initIdx = int(math.Round((spec.InitialSoC - spec.MinSoC) / width))
		if initIdx > g-1 {
			initIdx = g - 1
		}
		soc[initIdx] = spec.InitialSoC
	}

	cycleLevels := 1
	cycleStep := 0.0
	if cfg.MaxCycles > 0 {
		cycleLevels = cfg.CycleResolution
		budget := cfg.MaxCycles * 2 * spec.EnergyCapacityKWh
		cycleStep = budget / float64(cycleLevels-1)
	}

	n := len(soc) * cycleLevels
	tr := &tracker{
		asset:       asset,
		series:      series,
		cfg:         cfg,
		soc:         soc,
		initIdx:     initIdx,
		cycleLevels: cycleLevels,
		cycleStep:   cycleStep,
		value:       make([]float64, n),
		next:        make([]float64, n),
		prevState:   make([][]int32, series.Len()),
		prevPower:   make([][]float64, series.Len()),
	}
	for i := range tr.value {
		tr.value[i] = math.Inf(-1)
	}
	tr.value[initIdx*cycleLevels+0] = 0
	return tr
}

// step advances the value table across interval t, relaxing every transition
// out of every reachable state.
func (tr *tracker) step(t int) {
	n := len(tr.soc) * tr.cycleLevels
	tr.prevState[t] = make([]int32, n)
	tr.prevPower[t] = make([]float64, n)
	for i := range tr.next {
		tr.next[i] = math.Inf(-1)
		tr.prevState[t][i] = -1
	}

	hours := tr.series.Hours()
	volCap := tr.series.VolumeCap(t)
	spec := tr.asset.Spec
	ar := tr.cfg.ActionResolution

	for s := range tr.soc {
		for c := 0; c < tr.cycleLevels; c++ {
			from := s*tr.cycleLevels + c
			v := tr.value[from]
			if math.IsInf(v, -1) {
				continue
			}
			tr.visited++

			budgetLeft := math.Inf(1)
			if tr.cycleStep > 0 {
				budgetLeft = float64(tr.cycleLevels-1-c) * tr.cycleStep
			}
			eCharge := math.Min(math.Min(tr.asset.MaxChargeEnergyKWh(tr.soc[s], hours), volCap), budgetLeft)
			eDischarge := math.Min(math.Min(tr.asset.MaxDischargeEnergyKWh(tr.soc[s], hours), volCap), budgetLeft)

			reachHi := tr.soc[s] + eCharge*tr.asset.ChargeEfficiency()/spec.EnergyCapacityKWh
			reachLo := tr.soc[s] - eDischarge/tr.asset.DischargeEfficiency()/spec.EnergyCapacityKWh

			jmin := sort.SearchFloat64s(tr.soc, reachLo-reachEps)
			jmax := sort.SearchFloat64s(tr.soc, reachHi+reachEps) - 1
			if jmin > s {
				jmin = s
			}
			if jmax < s {
				jmax = s
			}

			// Holding is always feasible and anchors the tie-break.
			tr.relax(t, from, s, c, v, s)

			if span := s - jmin; span > 0 {
				stride := (span + ar - 1) / ar
				for j := s - stride; j > jmin; j -= stride {
					tr.relax(t, from, s, c, v, j)
				}
				tr.relax(t, from, s, c, v, jmin)
			}
			if span := jmax - s; span > 0 {
				stride := (span + ar - 1) / ar
				for j := s + stride; j < jmax; j += stride {
					tr.relax(t, from, s, c, v, j)
				}
				tr.relax(t, from, s, c, v, jmax)
			}
		}
	}

	tr.value, tr.next = tr.next, tr.value
}

// relax evaluates the transition from state (s, c) to SoC level j and updates
// the next layer if it improves on the recorded value. Ties go to the action
// with the smaller magnitude, which keeps output deterministic and avoids
// pointless cycling.
func (tr *tracker) relax(t, from, s, c int, v float64, j int) {
	spec := tr.asset.Spec
	hours := tr.series.Hours()

	deltaStored := (tr.soc[j] - tr.soc[s]) * spec.EnergyCapacityKWh
	var power, cash, throughput float64
	switch {
	case deltaStored > 0: // charge
		fromGrid := deltaStored / tr.asset.ChargeEfficiency()
		power = -fromGrid / hours
		cash = -tr.series.Buy(t)*fromGrid - spec.DegradationCost*fromGrid
		throughput = fromGrid
	case deltaStored < 0: // discharge
		toGrid := -deltaStored * tr.asset.DischargeEfficiency()
		power = toGrid / hours
		cash = tr.series.Sell(t)*toGrid - spec.DegradationCost*toGrid
		throughput = toGrid
	}

	cNew := c
	if tr.cycleStep > 0 && throughput > 0 {
		cNew = c + int(math.Ceil(throughput/tr.cycleStep-reachEps))
		if cNew > tr.cycleLevels-1 {
			return
		}
	}

	to := j*tr.cycleLevels + cNew
	nv := v + cash
	cur := tr.next[to]
	if nv > cur || (nv == cur && math.Abs(power) < math.Abs(tr.prevPower[t][to])) {
		tr.next[to] = nv
		tr.prevState[t][to] = int32(from)
		tr.prevPower[t][to] = power
	}
}

// best selects the optimal terminal state under the configured constraint. It
// fails with an InfeasibleScheduleError when no reachable state qualifies.
func (tr *tracker) best() (int, float64, error) {
	requireInit := tr.cfg.RequireReturnToInitialSoC
	minFinal := tr.cfg.MinFinalSoC
	allowed := func(s int) bool {
		if requireInit && s != tr.initIdx {
			return false
		}
		if minFinal > 0 && tr.soc[s] < minFinal-reachEps {
			return false
		}
		return true
	}
	reason := ""
	switch {
	case requireInit && minFinal > 0:
		reason = "initial SoC does not satisfy the required minimum ending SoC"
	case requireInit:
		reason = "no path returns to the initial SoC"
	case minFinal > 0:
		reason = "required minimum ending SoC is unreachable"
	}

	bestIdx := -1
	bestVal := math.Inf(-1)
	for s := range tr.soc {
		if !allowed(s) {
			continue
		}
		for c := 0; c < tr.cycleLevels; c++ {
			idx := s*tr.cycleLevels + c
			if v := tr.value[idx]; v > bestVal {
				bestVal = v
				bestIdx = idx
			}
		}
	}
	if bestIdx < 0 || math.IsInf(bestVal, -1) {
		if reason == "" {
			reason = "no reachable terminal state"
		}
		return 0, 0, &InfeasibleScheduleError{Reason: reason}
	}
	return bestIdx, bestVal, nil
}

// reconstruct walks the backpointers from the chosen terminal state to the
// initial state and emits the actions and the exact on-grid SoC trajectory.
func (tr *tracker) reconstruct(terminal int) (powers, trajectory []float64) {
	steps := tr.series.Len()
	powers = make([]float64, steps)
	trajectory = make([]float64, steps+1)

	state := terminal
	trajectory[steps] = tr.soc[state/tr.cycleLevels]
	for t := steps - 1; t >= 0; t-- {
		powers[t] = tr.prevPower[t][state]
		state = int(tr.prevState[t][state])
		trajectory[t] = tr.soc[state/tr.cycleLevels]
	}
	return powers, trajectory
}
