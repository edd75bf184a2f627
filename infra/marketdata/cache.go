package marketdata

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/gridstor/battbench/core/model"
)

// Merge combines two record sets keyed by interval start, preferring the
// existing record when both sets cover the same interval. The result is
// sorted by start time.
func Merge(existing, incoming []model.PriceRecord) []model.PriceRecord {
	byStart := make(map[int64]model.PriceRecord, len(existing)+len(incoming))
	for _, r := range incoming {
		byStart[r.Start.UnixNano()] = r
	}
	for _, r := range existing {
		byStart[r.Start.UnixNano()] = r
	}
	merged := make([]model.PriceRecord, 0, len(byStart))
	for _, r := range byStart {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Start.Before(merged[j].Start) })
	return merged
}

// UpdateCache merges the records into the JSON cache file at path, creating
// it when absent. Records already cached take precedence.
func UpdateCache(path string, records []model.PriceRecord) error {
	var existing []model.PriceRecord
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &existing); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	merged := Merge(existing, records)
	b, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
