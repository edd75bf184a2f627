package optimizer

import "fmt"

// Solver names accepted by Config.
const (
	SolverDP = "dp"
	SolverLP = "lp"
)

// Config controls the dispatch optimization. The discretization resolutions
// trade accuracy for compute cost: the DP sweep is O(T * G * A) with T
// intervals, G SoC levels and A actions per state.
type Config struct {
	// Solver selects the engine, "dp" (default) or "lp".
	Solver string `json:"solver"`
	// SoCResolution is the number of SoC levels G between the asset's
	// SoC bounds.
	SoCResolution int `json:"soc_resolution"`
	// ActionResolution is the number of discretized power levels
	// considered per direction from each state.
	ActionResolution int `json:"action_resolution"`
	// RequireReturnToInitialSoC restricts terminal states to the initial
	// SoC level.
	RequireReturnToInitialSoC bool `json:"require_return_to_initial_soc"`
	// MinFinalSoC requires the ending SoC fraction to reach at least this
	// value. Zero disables the constraint. Combines with
	// RequireReturnToInitialSoC: both must hold, so an initial SoC below
	// this value makes the run infeasible.
	MinFinalSoC float64 `json:"min_final_soc_fraction"`
	// MaxCycles caps the equivalent full cycles over the horizon,
	// throughput / (2 * capacity). Zero disables the cap.
	MaxCycles float64 `json:"max_cycles"`
	// CycleResolution is the number of cycle-budget levels tracked when
	// MaxCycles is set. Throughput is rounded up to the next level, so the
	// cap is never exceeded.
	CycleResolution int `json:"cycle_resolution"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Solver == "" {
		c.Solver = SolverDP
	}
	if c.SoCResolution == 0 {
		c.SoCResolution = 201
	}
	if c.ActionResolution == 0 {
		c.ActionResolution = 20
	}
	if c.CycleResolution == 0 {
		c.CycleResolution = 64
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.Solver != SolverDP && c.Solver != SolverLP {
		return &InvalidConfigError{Field: "solver", Reason: fmt.Sprintf("unknown solver %q", c.Solver)}
	}
	if c.SoCResolution < 2 {
		return &InvalidConfigError{Field: "soc_resolution", Reason: "must be >= 2"}
	}
	if c.ActionResolution < 1 {
		return &InvalidConfigError{Field: "action_resolution", Reason: "must be >= 1"}
	}
	if c.MinFinalSoC < 0 || c.MinFinalSoC > 1 {
		return &InvalidConfigError{Field: "min_final_soc_fraction", Reason: "must be in [0, 1]"}
	}
	if c.MaxCycles < 0 {
		return &InvalidConfigError{Field: "max_cycles", Reason: "must be >= 0"}
	}
	if c.MaxCycles > 0 && c.CycleResolution < 2 {
		return &InvalidConfigError{Field: "cycle_resolution", Reason: "must be >= 2 when max_cycles is set"}
	}
	return nil
}

// InvalidConfigError reports an out-of-range optimizer configuration value.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid optimizer config: %s %s", e.Field, e.Reason)
}

// InfeasibleScheduleError reports that no dispatch path satisfies the
// configured constraints.
type InfeasibleScheduleError struct {
	Reason string
}

func (e *InfeasibleScheduleError) Error() string {
	return fmt.Sprintf("infeasible schedule: %s", e.Reason)
}
