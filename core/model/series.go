package model

import (
	"math"
	"time"
)

// PriceRecord is one market interval as supplied by the caller. Prices are in
// currency per kWh of grid-side energy (callers holding EUR/MWh divide by 1000
// at the boundary). VolumeCapKWh optionally limits the grid-side energy the
// asset may move in the interval, per direction; zero means unlimited.
type PriceRecord struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	PriceBuy     float64   `json:"price_buy"`
	PriceSell    float64   `json:"price_sell"`
	VolumeCapKWh float64   `json:"volume_cap_kwh,omitempty"`
}

// PriceSeries is an immutable, uniform-grid view over validated price records.
// Construct with NewPriceSeries; zero value is unusable.
type PriceSeries struct {
	records  []PriceRecord
	duration time.Duration
}

// NewPriceSeries validates the records and wraps them. It fails with a
// MalformedSeriesError on an empty input, non-positive or ragged interval
// durations, gaps, overlaps, unordered timestamps or non-finite prices.
func NewPriceSeries(records []PriceRecord) (*PriceSeries, error) {
	if len(records) == 0 {
		return nil, &MalformedSeriesError{Index: -1, Reason: "no records"}
	}
	duration := records[0].End.Sub(records[0].Start)
	if duration <= 0 {
		return nil, &MalformedSeriesError{Index: 0, Reason: "non-positive duration"}
	}
	for i, r := range records {
		if d := r.End.Sub(r.Start); d != duration {
			return nil, &MalformedSeriesError{Index: i, Reason: "duration differs from first interval"}
		}
		if i > 0 {
			prev := records[i-1]
			if !r.Start.After(prev.Start) {
				return nil, &MalformedSeriesError{Index: i, Reason: "start time not increasing"}
			}
			if r.Start.Before(prev.End) {
				return nil, &MalformedSeriesError{Index: i, Reason: "overlaps previous interval"}
			}
			if r.Start.After(prev.End) {
				return nil, &MalformedSeriesError{Index: i, Reason: "gap after previous interval"}
			}
		}
		if !isFinite(r.PriceBuy) || !isFinite(r.PriceSell) {
			return nil, &MalformedSeriesError{Index: i, Reason: "non-finite price"}
		}
		if r.VolumeCapKWh < 0 || math.IsNaN(r.VolumeCapKWh) || math.IsInf(r.VolumeCapKWh, 0) {
			return nil, &MalformedSeriesError{Index: i, Reason: "invalid volume cap"}
		}
	}
	cp := make([]PriceRecord, len(records))
	copy(cp, records)
	return &PriceSeries{records: cp, duration: duration}, nil
}

// Len returns the number of intervals.
func (s *PriceSeries) Len() int { return len(s.records) }

// Duration returns the uniform interval length.
func (s *PriceSeries) Duration() time.Duration { return s.duration }

// Hours returns the interval length in hours, used to convert power to energy.
func (s *PriceSeries) Hours() float64 { return s.duration.Hours() }

// Start returns the start time of interval i.
func (s *PriceSeries) Start(i int) time.Time { return s.records[i].Start }

// Buy returns the purchase price of interval i.
func (s *PriceSeries) Buy(i int) float64 { return s.records[i].PriceBuy }

// Sell returns the sale price of interval i.
func (s *PriceSeries) Sell(i int) float64 { return s.records[i].PriceSell }

// VolumeCap returns the grid-side energy cap of interval i in kWh,
// or +Inf when the interval is uncapped.
func (s *PriceSeries) VolumeCap(i int) float64 {
	if s.records[i].VolumeCapKWh == 0 {
		return math.Inf(1)
	}
	return s.records[i].VolumeCapKWh
}

// Record returns a copy of record i.
func (s *PriceSeries) Record(i int) PriceRecord { return s.records[i] }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
