// Package export renders schedules and benchmark results to CSV and JSON for
// external reporting.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gridstor/battbench/core/model"
)

// WriteResultJSON writes the benchmark result to w in JSON format.
func WriteResultJSON(w io.Writer, res *model.BenchmarkResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteScheduleCSV writes the schedule to w, one row per interval, with the
// per-interval cash flow when a result is supplied.
func WriteScheduleCSV(w io.Writer, series *model.PriceSeries, sched *model.Schedule, res *model.BenchmarkResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"start", "action", "power_kw", "soc_start", "soc_end", "cash_flow"}); err != nil {
		return err
	}
	for i, power := range sched.PowerKW {
		cash := ""
		if res != nil {
			cash = formatFloat(res.CashFlows[i])
		}
		rec := []string{
			series.Start(i).Format(time.RFC3339),
			string(model.ActionOf(power)),
			formatFloat(power),
			formatFloat(sched.SoC[i]),
			formatFloat(sched.SoC[i+1]),
			cash,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadScheduleCSV parses a file written by WriteScheduleCSV and returns the
// power profile, one value per interval.
func ReadScheduleCSV(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("schedule csv: %w", err)
	}
	powerCol := -1
	for i, name := range header {
		if strings.TrimSpace(strings.ToLower(name)) == "power_kw" {
			powerCol = i
			break
		}
	}
	if powerCol == -1 {
		return nil, fmt.Errorf("schedule csv: missing power_kw column")
	}
	var powers []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("schedule csv: %w", err)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(rec[powerCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("schedule csv line %d: %w", line, err)
		}
		powers = append(powers, p)
	}
	return powers, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
