package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `markets:
  - name: "day_ahead"
    path: "prices/day_ahead.csv"
  - name: "imbalance"
    path: "prices/imbalance.json"
    price_scale: 0.001
asset:
  energy_capacity_kwh: 2000
  max_charge_kw: 1000
  max_discharge_kw: 1000
  round_trip_efficiency: 0.9
  max_soc_fraction: 1.0
  initial_soc_fraction: 0.5
optimizer:
  solver: "dp"
  soc_resolution: 101
metrics:
  sinks:
    - type: "nop"
mqtt:
  enabled: false
export:
  dir: "out"
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(cfg.Markets))
	}
	if cfg.Markets[0].PriceScale != 1 {
		t.Errorf("expected default price_scale 1, got %v", cfg.Markets[0].PriceScale)
	}
	if cfg.Markets[1].PriceScale != 0.001 {
		t.Errorf("expected price_scale 0.001, got %v", cfg.Markets[1].PriceScale)
	}
	if cfg.Asset.EnergyCapacityKWh != 2000 {
		t.Errorf("unexpected asset capacity %v", cfg.Asset.EnergyCapacityKWh)
	}
	if cfg.Optimizer.SoCResolution != 101 {
		t.Errorf("unexpected soc_resolution %d", cfg.Optimizer.SoCResolution)
	}
	if cfg.Optimizer.ActionResolution == 0 {
		t.Error("expected action_resolution default to be applied")
	}
	if len(cfg.Metrics.Sinks) != 1 || cfg.Metrics.Sinks[0].Type != "nop" {
		t.Errorf("unexpected metrics sinks %+v", cfg.Metrics.Sinks)
	}
	if cfg.Export.Dir != "out" {
		t.Errorf("unexpected export dir %q", cfg.Export.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level %q", cfg.Logging.Level)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `markets:
  - name: "day_ahead"
    path: "prices/day_ahead.csv"
asset:
  energy_capacity_kwh: 2000
  max_charge_kw: 1000
  max_discharge_kw: 1000
  round_trip_efficiency: 0.9
  max_soc_fraction: 1.0
  initial_soc_fraction: 0.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_LOGGING__LEVEL", "warn")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env override level warn, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"no markets": `asset:
  energy_capacity_kwh: 2000
  max_charge_kw: 1000
  max_discharge_kw: 1000
  round_trip_efficiency: 0.9
  max_soc_fraction: 1.0
  initial_soc_fraction: 0.5
`,
		"duplicate market": `markets:
  - name: "day_ahead"
    path: "a.csv"
  - name: "day_ahead"
    path: "b.csv"
asset:
  energy_capacity_kwh: 2000
  max_charge_kw: 1000
  max_discharge_kw: 1000
  round_trip_efficiency: 0.9
  max_soc_fraction: 1.0
  initial_soc_fraction: 0.5
`,
		"bad asset": `markets:
  - name: "day_ahead"
    path: "a.csv"
asset:
  energy_capacity_kwh: -5
`,
		"bad solver": `markets:
  - name: "day_ahead"
    path: "a.csv"
asset:
  energy_capacity_kwh: 2000
  max_charge_kw: 1000
  max_discharge_kw: 1000
  round_trip_efficiency: 0.9
  max_soc_fraction: 1.0
  initial_soc_fraction: 0.5
optimizer:
  solver: "milp"
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "cfg.yaml")
			if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadAssetSpecYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asset.yaml")
	data := `energy_capacity_kwh: 100
max_charge_kw: 50
max_discharge_kw: 50
charge_efficiency: 0.95
discharge_efficiency: 0.95
max_soc_fraction: 1.0
initial_soc_fraction: 0.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	spec, err := LoadAssetSpec(path)
	if err != nil {
		t.Fatalf("load asset: %v", err)
	}
	if spec.ChargeEfficiency != 0.95 {
		t.Errorf("unexpected charge efficiency %v", spec.ChargeEfficiency)
	}
}
