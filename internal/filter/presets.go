package filter

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Presets maps preset names to stored configurations.
//
// The YAML form is a mapping of names to configurations:
//
//	strong-sobel:
//	  name: edge detection
//	  version: 1
//	  properties:
//	    type: sobol
//	    horizRadius: 3
//	    vertRadius: 3
type Presets map[string]*Configuration

// LoadPresets parses presets from r.
func LoadPresets(r io.Reader) (Presets, error) {
	var p Presets
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return Presets{}, nil
		}
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	for name, cfg := range p {
		if cfg == nil {
			return nil, fmt.Errorf("%w: preset %q is empty", ErrInvalidConfiguration, name)
		}
	}
	if p == nil {
		p = Presets{}
	}
	return p, nil
}

// LoadPresetFile parses presets from a YAML file.
func LoadPresetFile(path string) (Presets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets: %w", err)
	}
	defer f.Close()

	return LoadPresets(f)
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForFilter returns the names of presets whose configuration belongs to the
// filter id.
func (p Presets) ForFilter(id string) []string {
	var names []string
	for _, name := range p.Names() {
		if p[name].Name() == id {
			names = append(names, name)
		}
	}
	return names
}

// Get returns a copy of a preset so callers can modify it freely.
func (p Presets) Get(name string) (*Configuration, bool) {
	cfg, ok := p[name]
	if !ok {
		return nil, false
	}
	return cfg.Clone(), true
}

// Save writes presets as YAML.
func (p Presets) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]*Configuration(p)); err != nil {
		return fmt.Errorf("failed to write presets: %w", err)
	}
	return enc.Close()
}
