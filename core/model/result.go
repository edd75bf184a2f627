package model

// BenchmarkResult aggregates the realized economics of a schedule, computed by
// the evaluator independently of the optimizer's bookkeeping. Derived data,
// never mutated after creation.
type BenchmarkResult struct {
	RunID string `json:"run_id"`

	// Revenue is the total sale cash flow, ChargeCost the total purchase
	// cash flow, DegradationCost the throughput-based wear cost. NetValue
	// is Revenue - ChargeCost - DegradationCost.
	Revenue         float64 `json:"revenue"`
	ChargeCost      float64 `json:"charge_cost"`
	DegradationCost float64 `json:"degradation_cost"`
	NetValue        float64 `json:"net_value"`

	// Grid-side energy moved in each direction, in kWh.
	EnergyChargedKWh    float64 `json:"energy_charged_kwh"`
	EnergyDischargedKWh float64 `json:"energy_discharged_kwh"`

	// EquivalentCycles is total throughput over twice the capacity.
	EquivalentCycles float64 `json:"equivalent_cycles"`

	// CashFlows holds the per-interval net cash flow, degradation included.
	CashFlows []float64 `json:"cash_flows"`
}
