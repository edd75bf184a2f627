package model

import "math"

// AssetSpec defines the technical and economic parameters of an ESS.
//
// Efficiency convention: when ChargeEfficiency and DischargeEfficiency are both
// set they are used as-is and RoundTripEfficiency is ignored. Otherwise the
// round-trip figure is split symmetrically, sqrt(rte) per direction, so the
// product recovers the specified round trip.
//
// Units: energy in kWh, power in kW, SoC as a fraction of capacity,
// degradation cost in currency per kWh of grid-side throughput.
type AssetSpec struct {
	EnergyCapacityKWh   float64 `json:"energy_capacity_kwh"`
	MaxChargeKW         float64 `json:"max_charge_kw"`
	MaxDischargeKW      float64 `json:"max_discharge_kw"`
	RoundTripEfficiency float64 `json:"round_trip_efficiency"`
	ChargeEfficiency    float64 `json:"charge_efficiency,omitempty"`
	DischargeEfficiency float64 `json:"discharge_efficiency,omitempty"`
	MinSoC              float64 `json:"min_soc_fraction"`
	MaxSoC              float64 `json:"max_soc_fraction"`
	InitialSoC          float64 `json:"initial_soc_fraction"`
	DegradationCost     float64 `json:"degradation_cost_per_kwh"`
}

// Validate checks the invariants of the spec, naming the violated field.
func (s AssetSpec) Validate() error {
	if s.EnergyCapacityKWh <= 0 {
		return &InvalidAssetSpecError{Field: "energy_capacity_kwh", Reason: "must be > 0"}
	}
	if s.MaxChargeKW < 0 {
		return &InvalidAssetSpecError{Field: "max_charge_kw", Reason: "must be >= 0"}
	}
	if s.MaxDischargeKW < 0 {
		return &InvalidAssetSpecError{Field: "max_discharge_kw", Reason: "must be >= 0"}
	}
	explicit := s.ChargeEfficiency != 0 || s.DischargeEfficiency != 0
	if explicit {
		if s.ChargeEfficiency <= 0 || s.ChargeEfficiency > 1 {
			return &InvalidAssetSpecError{Field: "charge_efficiency", Reason: "must be in (0, 1]"}
		}
		if s.DischargeEfficiency <= 0 || s.DischargeEfficiency > 1 {
			return &InvalidAssetSpecError{Field: "discharge_efficiency", Reason: "must be in (0, 1]"}
		}
	} else if s.RoundTripEfficiency <= 0 || s.RoundTripEfficiency > 1 {
		return &InvalidAssetSpecError{Field: "round_trip_efficiency", Reason: "must be in (0, 1]"}
	}
	if s.MinSoC < 0 || s.MinSoC > 1 {
		return &InvalidAssetSpecError{Field: "min_soc_fraction", Reason: "must be in [0, 1]"}
	}
	if s.MaxSoC < 0 || s.MaxSoC > 1 {
		return &InvalidAssetSpecError{Field: "max_soc_fraction", Reason: "must be in [0, 1]"}
	}
	if s.MinSoC > s.MaxSoC {
		return &InvalidAssetSpecError{Field: "min_soc_fraction", Reason: "exceeds max_soc_fraction"}
	}
	if s.InitialSoC < s.MinSoC || s.InitialSoC > s.MaxSoC {
		return &InvalidAssetSpecError{Field: "initial_soc_fraction", Reason: "outside [min_soc_fraction, max_soc_fraction]"}
	}
	if s.DegradationCost < 0 {
		return &InvalidAssetSpecError{Field: "degradation_cost_per_kwh", Reason: "must be >= 0"}
	}
	return nil
}

// Asset is a validated, immutable asset model with the efficiency split
// resolved. Construct with NewAsset.
type Asset struct {
	Spec AssetSpec

	etaCharge    float64
	etaDischarge float64
}

// NewAsset validates the spec and resolves the efficiency split.
func NewAsset(spec AssetSpec) (*Asset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	a := &Asset{Spec: spec}
	if spec.ChargeEfficiency != 0 || spec.DischargeEfficiency != 0 {
		a.etaCharge = spec.ChargeEfficiency
		a.etaDischarge = spec.DischargeEfficiency
	} else {
		eta := math.Sqrt(spec.RoundTripEfficiency)
		a.etaCharge = eta
		a.etaDischarge = eta
	}
	return a, nil
}

// ChargeEfficiency returns the resolved charge-direction efficiency.
func (a *Asset) ChargeEfficiency() float64 { return a.etaCharge }

// DischargeEfficiency returns the resolved discharge-direction efficiency.
func (a *Asset) DischargeEfficiency() float64 { return a.etaDischarge }

// MaxChargeEnergyKWh returns the grid-side energy the asset can draw in one
// interval of the given length starting at soc, limited by charge power and
// the MaxSoC bound.
func (a *Asset) MaxChargeEnergyKWh(soc, hours float64) float64 {
	storable := (a.Spec.MaxSoC - soc) * a.Spec.EnergyCapacityKWh
	if storable <= 0 {
		return 0
	}
	bySoC := storable / a.etaCharge
	byPower := a.Spec.MaxChargeKW * hours
	return math.Min(bySoC, byPower)
}

// MaxDischargeEnergyKWh returns the grid-side energy the asset can deliver in
// one interval of the given length starting at soc, limited by discharge power
// and the MinSoC bound.
func (a *Asset) MaxDischargeEnergyKWh(soc, hours float64) float64 {
	withdrawable := (soc - a.Spec.MinSoC) * a.Spec.EnergyCapacityKWh
	if withdrawable <= 0 {
		return 0
	}
	bySoC := withdrawable * a.etaDischarge
	byPower := a.Spec.MaxDischargeKW * hours
	return math.Min(bySoC, byPower)
}

// Step applies a signed grid-side power (positive discharges, negative
// charges) for one interval and returns the resulting SoC fraction together
// with the grid-side energy drawn and delivered. The action must already be
// feasible; the result is clamped only against floating-point drift.
func (a *Asset) Step(soc, powerKW, hours float64) (next, fromGrid, toGrid float64) {
	switch {
	case powerKW < 0:
		fromGrid = -powerKW * hours
		stored := fromGrid * a.etaCharge
		next = soc + stored/a.Spec.EnergyCapacityKWh
	case powerKW > 0:
		toGrid = powerKW * hours
		withdrawn := toGrid / a.etaDischarge
		next = soc - withdrawn/a.Spec.EnergyCapacityKWh
	default:
		next = soc
	}
	next = math.Min(math.Max(next, a.Spec.MinSoC), a.Spec.MaxSoC)
	return next, fromGrid, toGrid
}
