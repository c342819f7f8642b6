package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration is a named, versioned set of filter properties.
//
// Property values are scalars: bool, string, or any integer or floating
// point type. Values decoded from JSON arrive as float64 and values decoded
// from YAML as int or float64; the typed getters accept all of them.
//
// A nil *Configuration is valid for reading and behaves as an empty one, so
// filters can call getters without checking for nil.
type Configuration struct {
	name         string
	version      int
	properties   map[string]any
	channelFlags []bool
}

// NewConfiguration creates an empty configuration.
func NewConfiguration(name string, version int) *Configuration {
	return &Configuration{
		name:       name,
		version:    version,
		properties: make(map[string]any),
	}
}

// Name is usually the id of the filter the configuration belongs to.
func (c *Configuration) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

func (c *Configuration) Version() int {
	if c == nil {
		return 0
	}
	return c.version
}

// SetProperty stores a value, replacing any previous one.
func (c *Configuration) SetProperty(name string, value any) {
	if c.properties == nil {
		c.properties = make(map[string]any)
	}
	c.properties[name] = value
}

// RemoveProperty deletes a property. Missing names are ignored.
func (c *Configuration) RemoveProperty(name string) {
	delete(c.properties, name)
}

// GetProperty returns the raw value and whether it is set.
func (c *Configuration) GetProperty(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.properties[name]
	return v, ok
}

// HasProperty reports whether name is set.
func (c *Configuration) HasProperty(name string) bool {
	_, ok := c.GetProperty(name)
	return ok
}

// Keys returns the property names in sorted order.
func (c *Configuration) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.properties))
	for k := range c.properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Properties returns a copy of the property map.
func (c *Configuration) Properties() map[string]any {
	out := make(map[string]any)
	if c == nil {
		return out
	}
	for k, v := range c.properties {
		out[k] = v
	}
	return out
}

// GetFloat returns the property as a float64, or def when it is missing or
// not numeric.
func (c *Configuration) GetFloat(name string, def float64) float64 {
	v, ok := c.GetProperty(name)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// GetInt returns the property as an int. Floating point values are truncated.
func (c *Configuration) GetInt(name string, def int) int {
	v, ok := c.GetProperty(name)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return int(f)
	}
	return def
}

// GetBool returns the property as a bool. Numbers are true when non-zero and
// strings are parsed with strconv.ParseBool.
func (c *Configuration) GetBool(name string, def bool) bool {
	v, ok := c.GetProperty(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return def
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return def
}

// GetString returns the property formatted as a string.
func (c *Configuration) GetString(name string, def string) string {
	v, ok := c.GetProperty(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// SetChannelFlags restricts processing to the flagged channels. A nil slice
// means all channels.
func (c *Configuration) SetChannelFlags(flags []bool) {
	if flags == nil {
		c.channelFlags = nil
		return
	}
	c.channelFlags = append([]bool(nil), flags...)
}

// ChannelFlags returns the flags for a device with n channels. Unset flags
// and flags beyond the stored slice default to true.
func (c *Configuration) ChannelFlags(n int) []bool {
	flags := make([]bool, n)
	for i := range flags {
		flags[i] = true
		if c != nil && i < len(c.channelFlags) {
			flags[i] = c.channelFlags[i]
		}
	}
	return flags
}

// Clone returns a deep copy.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	out := NewConfiguration(c.name, c.version)
	for k, v := range c.properties {
		out.properties[k] = v
	}
	out.SetChannelFlags(c.channelFlags)
	return out
}

// Merge copies every property of other over c. Channel flags are taken from
// other when it has any.
func (c *Configuration) Merge(other *Configuration) {
	if other == nil {
		return
	}
	for k, v := range other.properties {
		c.SetProperty(k, v)
	}
	if other.channelFlags != nil {
		c.SetChannelFlags(other.channelFlags)
	}
}

// Validate checks that every property holds a scalar value.
func (c *Configuration) Validate() error {
	if c == nil {
		return nil
	}
	for _, k := range c.Keys() {
		switch c.properties[k].(type) {
		case bool, string,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
		default:
			return fmt.Errorf("%w: property %q has unsupported type %T", ErrInvalidConfiguration, k, c.properties[k])
		}
		if f, ok := toFloat(c.properties[k]); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return fmt.Errorf("%w: property %q is not a finite number", ErrInvalidConfiguration, k)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// configurationDoc is the serialized form shared by JSON and YAML.
type configurationDoc struct {
	Name         string         `json:"name" yaml:"name"`
	Version      int            `json:"version" yaml:"version"`
	ChannelFlags []bool         `json:"channel_flags,omitempty" yaml:"channel_flags,omitempty"`
	Properties   map[string]any `json:"properties" yaml:"properties"`
}

func (c *Configuration) doc() configurationDoc {
	return configurationDoc{
		Name:         c.name,
		Version:      c.version,
		ChannelFlags: c.channelFlags,
		Properties:   c.Properties(),
	}
}

func (c *Configuration) fromDoc(d configurationDoc) error {
	c.name = d.Name
	c.version = d.Version
	c.properties = make(map[string]any, len(d.Properties))
	for k, v := range d.Properties {
		c.properties[k] = v
	}
	c.SetChannelFlags(d.ChannelFlags)
	return c.Validate()
}

// MarshalJSON implements json.Marshaler.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.doc())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var d configurationDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return c.fromDoc(d)
}

// MarshalYAML implements yaml.Marshaler.
func (c *Configuration) MarshalYAML() (any, error) {
	return c.doc(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Configuration) UnmarshalYAML(value *yaml.Node) error {
	var d configurationDoc
	if err := value.Decode(&d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return c.fromDoc(d)
}

// ToYAML serializes the configuration.
func (c *Configuration) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ConfigurationFromYAML parses a configuration produced by ToYAML.
func ConfigurationFromYAML(data []byte) (*Configuration, error) {
	c := &Configuration{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
