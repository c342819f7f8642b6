package edgedetection

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edge-filter-mcp/internal/filter"
)

// PluginName is the name the plugin factory is registered under.
const PluginName = "edgedetection"

func init() {
	filter.MustRegisterPlugin(PluginName, func(owner *filter.Registry, args ...any) (filter.Plugin, error) {
		p, err := NewPlugin(owner, args...)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// Plugin is the loaded edge detection plugin. It owns one Filter, added to
// the registry it was created with.
type Plugin struct {
	owner  *filter.Registry
	filter *Filter
}

// NewPlugin creates the filter and adds it to owner. The host argument list
// carries nothing this plugin uses.
func NewPlugin(owner *filter.Registry, args ...any) (*Plugin, error) {
	if owner == nil {
		return nil, fmt.Errorf("edge detection plugin needs an owner registry")
	}
	f := New()
	if err := owner.Add(f); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"plugin": PluginName,
		"filter": f.ID().ID,
		"args":   len(args),
	}).Debug("plugin loaded")

	return &Plugin{owner: owner, filter: f}, nil
}

func (p *Plugin) Name() string { return PluginName }

// Filter returns the filter the plugin registered.
func (p *Plugin) Filter() *Filter { return p.filter }

// Close removes the filter from the owner registry.
func (p *Plugin) Close() error {
	return p.owner.Remove(p.filter.ID().ID)
}
