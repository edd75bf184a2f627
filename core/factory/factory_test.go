package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fake struct {
	Name  string  `json:"name"`
	Limit float64 `json:"limit"`
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*fake]()
	require.NoError(t, reg.Register("fake", func(conf map[string]any) (*fake, error) {
		var f fake
		if err := Decode(conf, &f); err != nil {
			return nil, err
		}
		return &f, nil
	}))

	f, err := reg.Create(ModuleConfig{Type: "fake", Conf: map[string]any{"name": "a", "limit": 2.5}})
	require.NoError(t, err)
	assert.Equal(t, "a", f.Name)
	assert.Equal(t, 2.5, f.Limit)
}

func TestRegistryUnknownType(t *testing.T) {
	reg := NewRegistry[*fake]()
	_, err := reg.Create(ModuleConfig{Type: "missing"})
	assert.Error(t, err)
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry[*fake]()
	f := func(map[string]any) (*fake, error) { return &fake{}, nil }
	require.NoError(t, reg.Register("dup", f))
	assert.Error(t, reg.Register("dup", f))
	assert.Error(t, reg.Register("nil", nil))
}
