package model

import "fmt"

// MalformedSeriesError reports an invalid price series. Index points at the
// offending record, or -1 when the series as a whole is unusable.
type MalformedSeriesError struct {
	Index  int
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed price series: %s", e.Reason)
	}
	return fmt.Sprintf("malformed price series at interval %d: %s", e.Index, e.Reason)
}

// InvalidAssetSpecError reports an asset parameter violating its invariant.
type InvalidAssetSpecError struct {
	Field  string
	Reason string
}

func (e *InvalidAssetSpecError) Error() string {
	return fmt.Sprintf("invalid asset spec: %s %s", e.Field, e.Reason)
}
