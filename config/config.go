// Package config loads and validates the benchmark configuration file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gridstor/battbench/core/metrics"
	"github.com/gridstor/battbench/core/model"
	"github.com/gridstor/battbench/core/optimizer"
	"github.com/gridstor/battbench/infra/mqtt"
)

// MarketConfig names one price series to benchmark against.
type MarketConfig struct {
	Name string `json:"name"`
	// Path points at a CSV or JSON price file.
	Path string `json:"path"`
	// CachePath, when set, merges freshly loaded records into a local
	// JSON cache so repeated runs survive upstream data outages.
	CachePath string `json:"cache_path"`
	// PriceScale rescales prices on load, e.g. 0.001 to convert a feed
	// quoted per MWh into the per-kWh convention used internally.
	PriceScale float64 `json:"price_scale"`
}

type ExportConfig struct {
	// Dir receives one schedule CSV and one result JSON per market.
	// Empty disables export.
	Dir string `json:"dir"`
}

type Config struct {
	Markets        []MarketConfig   `json:"markets"`
	Asset          model.AssetSpec  `json:"asset"`
	Optimizer      optimizer.Config `json:"optimizer"`
	Metrics        metrics.Config   `json:"metrics"`
	PrometheusAddr string           `json:"prometheus_addr"`
	MQTT           mqtt.Config      `json:"mqtt"`
	Export         ExportConfig     `json:"export"`
	Logging        LoggingConfig    `json:"logging"`
}

// Load reads the file at path, applies K_ environment overrides and
// validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	for i := range c.Markets {
		if c.Markets[i].PriceScale == 0 {
			c.Markets[i].PriceScale = 1
		}
	}
	c.Optimizer.SetDefaults()
	c.Logging.SetDefaults()
}

func (c *Config) Validate() error {
	if len(c.Markets) == 0 {
		return fmt.Errorf("config: at least one market is required")
	}
	seen := make(map[string]struct{}, len(c.Markets))
	for i, m := range c.Markets {
		if m.Name == "" {
			return fmt.Errorf("config: markets[%d]: name is required", i)
		}
		if m.Path == "" {
			return fmt.Errorf("config: market %q: path is required", m.Name)
		}
		if m.PriceScale <= 0 {
			return fmt.Errorf("config: market %q: price_scale must be positive", m.Name)
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("config: duplicate market name %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	if err := c.Asset.Validate(); err != nil {
		return err
	}
	if err := c.Optimizer.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}
