package filter

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/edge-filter-mcp/internal/device"
)

var (
	// ErrUnknownFilter is returned when a filter id is not in the registry.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrDuplicateFilter is returned when a filter id is added twice.
	ErrDuplicateFilter = errors.New("filter already registered")

	// ErrDuplicatePlugin is returned when a plugin name is registered twice.
	ErrDuplicatePlugin = errors.New("plugin already registered")

	// ErrInvalidConfiguration is returned for configurations that cannot be
	// parsed or contain values of the wrong type.
	ErrInvalidConfiguration = errors.New("invalid filter configuration")
)

// ID identifies a filter by a stable machine id and a display name.
type ID struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func (id ID) String() string {
	return id.ID
}

// Filter categories used to group filters in menus.
const (
	CategoryAdjust     = "adjust_filters"
	CategoryBlur       = "blur_filters"
	CategoryEdge       = "edge_filters"
	CategoryEnhance    = "enhance_filters"
	CategoryArtistic   = "artistic_filters"
	CategoryMap        = "map_filters"
	CategoryOther      = "other_filters"
	CategoryColors     = "colors_filters"
	CategoryEmboss     = "emboss_filters"
	CategoryDecorative = "decorative_filters"
)

// ColorSpaceIndependence says whether a filter can work on any pixel format or
// needs the host to convert the device first.
type ColorSpaceIndependence int

const (
	FullyIndependent ColorSpaceIndependence = iota
	ToLab16
	ToRGBA16
	ToRGBA8
)

func (c ColorSpaceIndependence) String() string {
	switch c {
	case FullyIndependent:
		return "fully-independent"
	case ToLab16:
		return "to-lab16"
	case ToRGBA16:
		return "to-rgba16"
	case ToRGBA8:
		return "to-rgba8"
	default:
		return "unknown"
	}
}

// MarshalText renders the independence mode by name in JSON and YAML output.
func (c ColorSpaceIndependence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (c *ColorSpaceIndependence) UnmarshalText(text []byte) error {
	for _, v := range []ColorSpaceIndependence{FullyIndependent, ToLab16, ToRGBA16, ToRGBA8} {
		if v.String() == string(text) {
			*c = v
			return nil
		}
	}
	return fmt.Errorf("unknown color space independence %q", text)
}

// Capabilities advertises what the host may do with a filter.
type Capabilities struct {
	SupportsPainting         bool                   `json:"supports_painting"`
	SupportsAdjustmentLayers bool                   `json:"supports_adjustment_layers"`
	SupportsLevelOfDetail    bool                   `json:"supports_level_of_detail"`
	SupportsThreading        bool                   `json:"supports_threading"`
	ShowConfigurationWidget  bool                   `json:"show_configuration_widget"`
	ColorSpaceIndependence   ColorSpaceIndependence `json:"color_space_independence"`
}

// Filter is the interface every filter plugin implements.
//
// Process modifies dev inside rect in place. Implementations read outside
// rect as needed (up to NeededRect) but must not write outside ChangedRect.
type Filter interface {
	ID() ID
	Category() string
	MenuEntry() string
	Capabilities() Capabilities

	Process(ctx context.Context, dev *device.Device, rect image.Rectangle, cfg *Configuration, progress ProgressUpdater) error

	// FactoryConfiguration returns a fresh copy of the default settings.
	FactoryConfiguration() *Configuration

	NeededRect(rect image.Rectangle, cfg *Configuration, lod int) image.Rectangle
	ChangedRect(rect image.Rectangle, cfg *Configuration, lod int) image.Rectangle

	// CreateConfigurationWidget returns the settings form for this filter.
	// dev is the device the filter will be previewed on and may be nil.
	CreateConfigurationWidget(dev *device.Device, useForMasks bool) ConfigWidget
}

// ConfigurationValidator is implemented by filters that restrict the values
// of their properties. ResolveConfiguration calls it on the merged
// configuration; errors should wrap ErrInvalidConfiguration.
type ConfigurationValidator interface {
	ValidateConfiguration(cfg *Configuration) error
}

// Base carries the identity and capability flags shared by all filters.
// Embed it and override the methods whose defaults do not fit.
type Base struct {
	id        ID
	category  string
	menuEntry string
	caps      Capabilities
}

// NewBase creates a Base with all capabilities off and full color space
// independence.
func NewBase(id ID, category, menuEntry string) Base {
	return Base{id: id, category: category, menuEntry: menuEntry}
}

func (b *Base) ID() ID                     { return b.id }
func (b *Base) Category() string           { return b.category }
func (b *Base) MenuEntry() string          { return b.menuEntry }
func (b *Base) Capabilities() Capabilities { return b.caps }

func (b *Base) SetSupportsPainting(v bool)         { b.caps.SupportsPainting = v }
func (b *Base) SetSupportsAdjustmentLayers(v bool) { b.caps.SupportsAdjustmentLayers = v }
func (b *Base) SetSupportsLevelOfDetail(v bool)    { b.caps.SupportsLevelOfDetail = v }
func (b *Base) SetSupportsThreading(v bool)        { b.caps.SupportsThreading = v }
func (b *Base) SetShowConfigurationWidget(v bool)  { b.caps.ShowConfigurationWidget = v }

func (b *Base) SetColorSpaceIndependence(v ColorSpaceIndependence) {
	b.caps.ColorSpaceIndependence = v
}

// FactoryConfiguration returns an empty version 1 configuration named after
// the filter.
func (b *Base) FactoryConfiguration() *Configuration {
	return NewConfiguration(b.id.ID, 1)
}

// NeededRect defaults to a point filter: it reads exactly what it writes.
func (b *Base) NeededRect(rect image.Rectangle, _ *Configuration, _ int) image.Rectangle {
	return rect
}

// ChangedRect defaults to a point filter.
func (b *Base) ChangedRect(rect image.Rectangle, _ *Configuration, _ int) image.Rectangle {
	return rect
}
