package model

import "time"

// Action is a human-friendly operating mode for one interval.
type Action string

const (
	ActionCharge    Action = "CHARGE"
	ActionHold      Action = "HOLD"
	ActionDischarge Action = "DISCHARGE"
)

// ActionOf classifies a signed grid-side power.
func ActionOf(powerKW float64) Action {
	switch {
	case powerKW < 0:
		return ActionCharge
	case powerKW > 0:
		return ActionDischarge
	default:
		return ActionHold
	}
}

// SolveStats captures metadata about an optimization run.
type SolveStats struct {
	Solver        string        `json:"solver"`
	Elapsed       time.Duration `json:"elapsed"`
	StatesVisited int           `json:"states_visited"`
}

// Schedule is the dispatch plan produced by the optimizer: one signed
// grid-side power per interval (positive discharges, negative charges) and
// the SoC trajectory at interval boundaries, one point more than actions,
// starting at the initial SoC. Immutable once returned.
type Schedule struct {
	// PowerKW holds the dispatch action for each interval.
	PowerKW []float64 `json:"power_kw"`
	// SoC holds the state-of-charge fraction at each interval boundary.
	SoC []float64 `json:"soc"`
	// Objective is the optimizer's reported optimal net value. The
	// evaluator must reproduce it within floating-point tolerance.
	Objective float64 `json:"objective"`
	// Stats describes how the schedule was computed.
	Stats SolveStats `json:"stats"`
}

// Len returns the number of intervals covered by the schedule.
func (s *Schedule) Len() int { return len(s.PowerKW) }
