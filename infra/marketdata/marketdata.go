// Package marketdata loads price records from local CSV or JSON files and
// maintains a merge-based cache of previously fetched market data. Fetching
// from a live market API is the responsibility of the external layer; this
// package only deals with files it is handed.
package marketdata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gridstor/battbench/core/model"
)

// Load reads price records from the file, dispatching on its extension
// (.csv, .json).
func Load(path string) ([]model.PriceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".json":
		return ReadJSON(f)
	default:
		return nil, fmt.Errorf("unsupported market data format: %s", filepath.Ext(path))
	}
}
