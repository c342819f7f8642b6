package filter

import (
	"fmt"
	"sort"
	"sync"
)

// Plugin is a loaded plugin instance. Close releases whatever the plugin
// added to its owner.
type Plugin interface {
	Name() string
	Close() error
}

// PluginFactory creates a plugin. owner is the registry the plugin adds its
// filters to; args is the host's generic argument list, passed through
// unchanged.
type PluginFactory func(owner *Registry, args ...any) (Plugin, error)

var (
	// factories is the package-level table of compiled-in plugins
	factories = make(map[string]PluginFactory)
	// factoriesMu protects concurrent access to factories
	factoriesMu sync.RWMutex
)

// RegisterPlugin makes a plugin factory available to LoadPlugins. It is
// meant to be called from the init function of a plugin package.
func RegisterPlugin(name string, factory PluginFactory) error {
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for plugin %q", name)
	}

	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if _, exists := factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}
	factories[name] = factory
	return nil
}

// MustRegisterPlugin is RegisterPlugin for init functions; it panics on error.
func MustRegisterPlugin(name string, factory PluginFactory) {
	if err := RegisterPlugin(name, factory); err != nil {
		panic(err)
	}
}

// PluginNames returns the names of all registered factories, sorted.
func PluginNames() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPlugin instantiates a single registered plugin into owner.
func LoadPlugin(name string, owner *Registry, args ...any) (Plugin, error) {
	factoriesMu.RLock()
	factory, ok := factories[name]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("plugin not found: %s", name)
	}
	p, err := factory(owner, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load plugin %s: %w", name, err)
	}
	return p, nil
}

// LoadPlugins instantiates every registered plugin into owner, in name
// order. On error the plugins loaded so far are closed again.
func LoadPlugins(owner *Registry, args ...any) ([]Plugin, error) {
	var loaded []Plugin
	for _, name := range PluginNames() {
		p, err := LoadPlugin(name, owner, args...)
		if err != nil {
			for _, l := range loaded {
				_ = l.Close()
			}
			return nil, err
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
