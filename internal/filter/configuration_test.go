package filter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_TypedGetters(t *testing.T) {
	cfg := NewConfiguration("test", 1)
	cfg.SetProperty("int", 3)
	cfg.SetProperty("float", 2.5)
	cfg.SetProperty("float32", float32(1.5))
	cfg.SetProperty("bool", true)
	cfg.SetProperty("boolString", "false")
	cfg.SetProperty("numString", "4.25")
	cfg.SetProperty("name", "prewitt")

	assert.Equal(t, 3, cfg.GetInt("int", 0))
	assert.Equal(t, 2, cfg.GetInt("float", 0))
	assert.Equal(t, 3.0, cfg.GetFloat("int", 0))
	assert.Equal(t, 1.5, cfg.GetFloat("float32", 0))
	assert.Equal(t, 4.25, cfg.GetFloat("numString", 0))
	assert.True(t, cfg.GetBool("bool", false))
	assert.False(t, cfg.GetBool("boolString", true))
	assert.True(t, cfg.GetBool("int", false))
	assert.Equal(t, "prewitt", cfg.GetString("name", ""))
	assert.Equal(t, "2.5", cfg.GetString("float", ""))

	// Missing or unconvertible values fall back to the default.
	assert.Equal(t, 7, cfg.GetInt("missing", 7))
	assert.Equal(t, 1.0, cfg.GetFloat("name", 1.0))
	assert.True(t, cfg.GetBool("name", true))
	assert.Equal(t, "x", cfg.GetString("missing", "x"))
}

func TestConfiguration_NilIsEmpty(t *testing.T) {
	var cfg *Configuration

	assert.Equal(t, "", cfg.Name())
	assert.Equal(t, 0, cfg.Version())
	assert.False(t, cfg.HasProperty("x"))
	assert.Equal(t, 1.5, cfg.GetFloat("x", 1.5))
	assert.Equal(t, []bool{true, true}, cfg.ChannelFlags(2))
	assert.Nil(t, cfg.Clone())
	assert.NoError(t, cfg.Validate())
}

func TestConfiguration_ChannelFlags(t *testing.T) {
	cfg := NewConfiguration("test", 1)
	assert.Equal(t, []bool{true, true, true, true}, cfg.ChannelFlags(4))

	cfg.SetChannelFlags([]bool{false, true})
	assert.Equal(t, []bool{false, true, true, true}, cfg.ChannelFlags(4))

	cfg.SetChannelFlags(nil)
	assert.Equal(t, []bool{true, true, true, true}, cfg.ChannelFlags(4))
}

func TestConfiguration_CloneIsIndependent(t *testing.T) {
	cfg := NewConfiguration("test", 2)
	cfg.SetProperty("a", 1)
	cfg.SetChannelFlags([]bool{true, false})

	c := cfg.Clone()
	c.SetProperty("a", 2)
	c.SetChannelFlags([]bool{false})

	assert.Equal(t, 1, cfg.GetInt("a", 0))
	assert.Equal(t, []bool{true, false, true}, cfg.ChannelFlags(3))
	assert.Equal(t, 2, c.Version())
}

func TestConfiguration_Merge(t *testing.T) {
	base := NewConfiguration("test", 1)
	base.SetProperty("a", 1)
	base.SetProperty("b", "keep")

	over := NewConfiguration("other", 5)
	over.SetProperty("a", 9)
	over.SetChannelFlags([]bool{false})

	base.Merge(over)
	base.Merge(nil)

	assert.Equal(t, "test", base.Name())
	assert.Equal(t, 1, base.Version())
	assert.Equal(t, 9, base.GetInt("a", 0))
	assert.Equal(t, "keep", base.GetString("b", ""))
	assert.Equal(t, []bool{false, true}, base.ChannelFlags(2))
}

func TestConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{"int", 1, false},
		{"float", 1.5, false},
		{"string", "x", false},
		{"bool", true, false},
		{"slice", []int{1}, true},
		{"map", map[string]any{}, true},
		{"nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfiguration("test", 1)
			cfg.SetProperty("p", tt.value)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfiguration_JSON(t *testing.T) {
	cfg := NewConfiguration("edge detection", 1)
	cfg.SetProperty("horizRadius", 3)
	cfg.SetProperty("type", "sobol")
	cfg.SetChannelFlags([]bool{true, false, true, true})

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var back Configuration
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, "edge detection", back.Name())
	assert.Equal(t, 1, back.Version())
	assert.Equal(t, 3, back.GetInt("horizRadius", 0))
	assert.Equal(t, "sobol", back.GetString("type", ""))
	assert.Equal(t, []bool{true, false, true, true}, back.ChannelFlags(4))
}

func TestConfiguration_UnmarshalJSONRejectsNested(t *testing.T) {
	var cfg Configuration
	err := json.Unmarshal([]byte(`{"name":"x","version":1,"properties":{"a":[1,2]}}`), &cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
}

func TestConfiguration_YAML(t *testing.T) {
	cfg := NewConfiguration("edge detection", 1)
	cfg.SetProperty("vertRadius", 2.5)
	cfg.SetProperty("lockAspect", false)

	data, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: edge detection")

	back, err := ConfigurationFromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, 2.5, back.GetFloat("vertRadius", 0))
	assert.False(t, back.GetBool("lockAspect", true))
	assert.Equal(t, []string{"lockAspect", "vertRadius"}, back.Keys())
}

func TestConfigurationFromYAML_Invalid(t *testing.T) {
	_, err := ConfigurationFromYAML([]byte("name: x\nproperties: [1, 2]\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
}
