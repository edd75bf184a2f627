package marketdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstor/battbench/core/model"
)

const sampleCSV = `start,end,price_buy,price_sell,volume_cap_kwh
2024-01-01T00:00:00Z,2024-01-01T01:00:00Z,0.010,0.010,
2024-01-01T01:00:00Z,2024-01-01T02:00:00Z,0.050,0.048,500
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 0.01, records[0].PriceBuy)
	assert.Equal(t, 0.048, records[1].PriceSell)
	assert.Equal(t, 500.0, records[1].VolumeCapKWh)
	assert.Equal(t, time.Hour, records[0].End.Sub(records[0].Start))
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("start,end,price_buy\n"))
	assert.ErrorContains(t, err, "price_sell")
}

func TestReadCSVBadTimestamp(t *testing.T) {
	bad := "start,end,price_buy,price_sell\nyesterday,2024-01-01T01:00:00Z,1,1\n"
	_, err := ReadCSV(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2")
}

func TestReadJSON(t *testing.T) {
	in := `[{"start":"2024-01-01T00:00:00Z","end":"2024-01-01T01:00:00Z","price_buy":0.02,"price_sell":0.02}]`
	records, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.02, records[0].PriceBuy)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	records, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = Load(filepath.Join(dir, "prices.txt"))
	assert.Error(t, err)
}

func TestMergePrefersExisting(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []model.PriceRecord{{Start: t0, End: t0.Add(time.Hour), PriceBuy: 1, PriceSell: 1}}
	incoming := []model.PriceRecord{
		{Start: t0, End: t0.Add(time.Hour), PriceBuy: 9, PriceSell: 9},
		{Start: t0.Add(time.Hour), End: t0.Add(2 * time.Hour), PriceBuy: 2, PriceSell: 2},
	}

	merged := Merge(existing, incoming)
	require.Len(t, merged, 2)
	assert.Equal(t, 1.0, merged[0].PriceBuy)
	assert.Equal(t, 2.0, merged[1].PriceBuy)
}

func TestUpdateCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := []model.PriceRecord{{Start: t0, End: t0.Add(time.Hour), PriceBuy: 1, PriceSell: 1}}
	require.NoError(t, UpdateCache(path, first))

	second := []model.PriceRecord{
		{Start: t0, End: t0.Add(time.Hour), PriceBuy: 9, PriceSell: 9},
		{Start: t0.Add(time.Hour), End: t0.Add(2 * time.Hour), PriceBuy: 2, PriceSell: 2},
	}
	require.NoError(t, UpdateCache(path, second))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	cached, err := ReadJSON(strings.NewReader(string(b)))
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, 1.0, cached[0].PriceBuy)
}
