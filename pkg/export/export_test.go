package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstor/battbench/core/model"
)

func twoIntervalSeries(t *testing.T) *model.PriceSeries {
	t.Helper()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err := model.NewPriceSeries([]model.PriceRecord{
		{Start: t0, End: t0.Add(time.Hour), PriceBuy: 10, PriceSell: 10},
		{Start: t0.Add(time.Hour), End: t0.Add(2 * time.Hour), PriceBuy: 10, PriceSell: 50},
	})
	require.NoError(t, err)
	return series
}

func TestWriteScheduleCSV(t *testing.T) {
	series := twoIntervalSeries(t)
	sched := &model.Schedule{
		PowerKW: []float64{-10, 10},
		SoC:     []float64{0, 1, 0},
	}
	res := &model.BenchmarkResult{CashFlows: []float64{-100, 500}}

	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(&buf, series, sched, res))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "CHARGE", rows[1][1])
	assert.Equal(t, "DISCHARGE", rows[2][1])
	assert.Equal(t, "-100", rows[1][5])
	assert.Equal(t, "500", rows[2][5])
}

func TestWriteResultJSON(t *testing.T) {
	res := &model.BenchmarkResult{RunID: "r1", NetValue: 400, CashFlows: []float64{-100, 500}}

	var buf bytes.Buffer
	require.NoError(t, WriteResultJSON(&buf, res))

	var decoded model.BenchmarkResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "r1", decoded.RunID)
	assert.Equal(t, 400.0, decoded.NetValue)
}
