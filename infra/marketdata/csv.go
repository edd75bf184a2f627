package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gridstor/battbench/core/model"
)

// ReadCSV parses price records from CSV. The header must name the columns
// start, end, price_buy and price_sell; volume_cap_kwh is optional.
// Timestamps are RFC3339.
func ReadCSV(r io.Reader) ([]model.PriceRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"start", "end", "price_buy", "price_sell"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", required)
		}
	}

	var records []model.PriceRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, col map[string]int) (model.PriceRecord, error) {
	var rec model.PriceRecord
	var err error
	if rec.Start, err = time.Parse(time.RFC3339, row[col["start"]]); err != nil {
		return rec, fmt.Errorf("start: %w", err)
	}
	if rec.End, err = time.Parse(time.RFC3339, row[col["end"]]); err != nil {
		return rec, fmt.Errorf("end: %w", err)
	}
	if rec.PriceBuy, err = strconv.ParseFloat(row[col["price_buy"]], 64); err != nil {
		return rec, fmt.Errorf("price_buy: %w", err)
	}
	if rec.PriceSell, err = strconv.ParseFloat(row[col["price_sell"]], 64); err != nil {
		return rec, fmt.Errorf("price_sell: %w", err)
	}
	if i, ok := col["volume_cap_kwh"]; ok && i < len(row) && row[i] != "" {
		if rec.VolumeCapKWh, err = strconv.ParseFloat(row[i], 64); err != nil {
			return rec, fmt.Errorf("volume_cap_kwh: %w", err)
		}
	}
	return rec, nil
}
