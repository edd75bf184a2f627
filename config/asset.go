package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gridstor/battbench/core/model"
)

// LoadAssetSpec reads a standalone asset description, for commands that
// replay a stored schedule without a full benchmark config.
func LoadAssetSpec(path string) (model.AssetSpec, error) {
	var spec model.AssetSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// Round-trip through a generic map so the json tags on
		// AssetSpec stay the single source of field names.
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return spec, err
		}
		buf, err := json.Marshal(raw)
		if err != nil {
			return spec, err
		}
		if err := json.Unmarshal(buf, &spec); err != nil {
			return spec, err
		}
	case ".json":
		if err := json.Unmarshal(data, &spec); err != nil {
			return spec, err
		}
	default:
		return spec, fmt.Errorf("unsupported asset format: %s", filepath.Ext(path))
	}
	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}
