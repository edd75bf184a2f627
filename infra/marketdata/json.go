package marketdata

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gridstor/battbench/core/model"
)

// ReadJSON parses price records from a JSON array.
func ReadJSON(r io.Reader) ([]model.PriceRecord, error) {
	var records []model.PriceRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode market data: %w", err)
	}
	return records, nil
}
