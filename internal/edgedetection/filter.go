package edgedetection

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/edge-filter-mcp/internal/device"
	"github.com/ironsheep/edge-filter-mcp/internal/filter"
)

// Configuration property names.
const (
	PropHorizRadius  = "horizRadius"
	PropVertRadius   = "vertRadius"
	PropType         = "type"
	PropOutput       = "output"
	PropLockAspect   = "lockAspect"
	PropTransparency = "transparency"
)

// Accepted range of horizRadius and vertRadius.
const (
	MinRadius = 1
	MaxRadius = 100
)

// defaultHalfSize is the kernel half size assumed by the geometry queries
// when a configuration has no radius.
const defaultHalfSize = 5

// ID returns the identity of the edge detection filter.
func ID() filter.ID {
	return filter.ID{ID: "edge detection", Name: "Edge Detection"}
}

// Settings is the typed form of an edge detection configuration.
type Settings struct {
	HorizRadius  float64
	VertRadius   float64
	Type         KernelType
	Output       Output
	LockAspect   bool
	Transparency bool
}

// DefaultSettings are the factory settings.
func DefaultSettings() Settings {
	return Settings{
		HorizRadius: 1,
		VertRadius:  1,
		Type:        Prewitt,
		Output:      Pythagorean,
		LockAspect:  true,
	}
}

// SettingsFromConfiguration reads cfg, using the factory value for anything
// missing. Unknown kernel names select the sobol kernel and unknown outputs
// select pythagorean.
func SettingsFromConfiguration(cfg *filter.Configuration) Settings {
	d := DefaultSettings()
	kt, _ := ParseKernelType(cfg.GetString(PropType, d.Type.String()))
	out, _ := ParseOutput(cfg.GetString(PropOutput, d.Output.String()))
	return Settings{
		HorizRadius:  cfg.GetFloat(PropHorizRadius, d.HorizRadius),
		VertRadius:   cfg.GetFloat(PropVertRadius, d.VertRadius),
		Type:         kt,
		Output:       out,
		LockAspect:   cfg.GetBool(PropLockAspect, d.LockAspect),
		Transparency: cfg.GetBool(PropTransparency, d.Transparency),
	}
}

// Configuration converts s to a configuration of the edge detection filter.
func (s Settings) Configuration() *filter.Configuration {
	cfg := filter.NewConfiguration(ID().ID, 1)
	cfg.SetProperty(PropHorizRadius, s.HorizRadius)
	cfg.SetProperty(PropVertRadius, s.VertRadius)
	cfg.SetProperty(PropType, s.Type.String())
	cfg.SetProperty(PropOutput, s.Output.String())
	cfg.SetProperty(PropLockAspect, s.LockAspect)
	cfg.SetProperty(PropTransparency, s.Transparency)
	return cfg
}

// Filter is the edge detection filter.
type Filter struct {
	filter.Base
}

// New creates the filter with its capability flags set.
func New() *Filter {
	f := &Filter{Base: filter.NewBase(ID(), filter.CategoryEdge, "&Edge Detection...")}
	f.SetSupportsPainting(true)
	f.SetSupportsAdjustmentLayers(true)
	f.SetSupportsLevelOfDetail(true)
	f.SetSupportsThreading(true)
	f.SetShowConfigurationWidget(true)
	f.SetColorSpaceIndependence(filter.FullyIndependent)
	return f
}

// ValidateConfiguration rejects radii outside [MinRadius, MaxRadius]. Unknown
// kernel and output names are accepted and fall back at processing time.
func (f *Filter) ValidateConfiguration(cfg *filter.Configuration) error {
	for _, name := range []string{PropHorizRadius, PropVertRadius} {
		if !cfg.HasProperty(name) {
			continue
		}
		r := cfg.GetFloat(name, math.NaN())
		if !(r >= MinRadius && r <= MaxRadius) {
			return fmt.Errorf("%w: %s must be between %d and %d", filter.ErrInvalidConfiguration, name, MinRadius, MaxRadius)
		}
	}
	return nil
}

// FactoryConfiguration returns the default configuration.
func (f *Filter) FactoryConfiguration() *filter.Configuration {
	return DefaultSettings().Configuration()
}

// Process runs edge detection over rect of dev. Radii are scaled to the
// level of detail of dev.
func (f *Filter) Process(ctx context.Context, dev *device.Device, rect image.Rectangle, cfg *filter.Configuration, progress filter.ProgressUpdater) error {
	if dev == nil {
		return fmt.Errorf("edge detection: nil device")
	}
	s := SettingsFromConfiguration(cfg)
	t := filter.NewLodTransform(dev.Lod())

	return ApplyEdgeDetection(ctx, dev, rect, Params{
		XRadius:      t.Scale(s.HorizRadius),
		YRadius:      t.Scale(s.VertRadius),
		Type:         s.Type,
		Output:       s.Output,
		WriteToAlpha: s.Transparency,
		ChannelFlags: cfg.ChannelFlags(dev.ChannelCount()),
	}, progress)
}

// NeededRect grows rect by twice the kernel half size on each axis.
func (f *Filter) NeededRect(rect image.Rectangle, cfg *filter.Configuration, lod int) image.Rectangle {
	hw, hh := halfSizes(cfg, lod)
	return image.Rect(rect.Min.X-2*hw, rect.Min.Y-2*hh, rect.Max.X+2*hw, rect.Max.Y+2*hh)
}

// ChangedRect grows rect by the kernel half size on each axis.
func (f *Filter) ChangedRect(rect image.Rectangle, cfg *filter.Configuration, lod int) image.Rectangle {
	hw, hh := halfSizes(cfg, lod)
	return image.Rect(rect.Min.X-hw, rect.Min.Y-hh, rect.Max.X+hw, rect.Max.Y+hh)
}

// CreateConfigurationWidget returns the settings form. dev is not needed to
// build the form.
func (f *Filter) CreateConfigurationWidget(_ *device.Device, useForMasks bool) filter.ConfigWidget {
	return newConfigWidget(useForMasks)
}

func halfSizes(cfg *filter.Configuration, lod int) (int, int) {
	t := filter.NewLodTransform(lod)
	half := func(name string) int {
		if !cfg.HasProperty(name) {
			return defaultHalfSize
		}
		return KernelSizeFromRadius(t.Scale(cfg.GetFloat(name, 1))) / 2
	}
	return half(PropHorizRadius), half(PropVertRadius)
}
