package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edge-filter-mcp/internal/device"
	"github.com/ironsheep/edge-filter-mcp/internal/filter"
	"github.com/ironsheep/edge-filter-mcp/internal/imaging"
)

// errInvalidArgs marks tool arguments that could not be decoded or are
// missing; it is reported as JSON-RPC -32602.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "filter_apply").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return -32602; other tool failures return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	entry := s.log.WithFields(logrus.Fields{
		"tool":     params.Name,
		"duration": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("tool failed")
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	entry.Debug("tool done")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Filters
	case "filter_list":
		return s.handleFilterList(args)
	case "filter_default_config":
		return s.handleFilterDefaultConfig(args)
	case "filter_config_widget":
		return s.handleFilterConfigWidget(args)
	case "filter_needed_rect":
		return s.handleFilterRect(args, filter.Filter.NeededRect)
	case "filter_changed_rect":
		return s.handleFilterRect(args, filter.Filter.ChangedRect)
	case "filter_apply":
		return s.handleFilterApply(ctx, args)
	case "filter_presets":
		return s.handleFilterPresets(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// Rect is the wire form of a rectangle. (X1,Y1) is inclusive and (X2,Y2)
// exclusive.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r Rect) image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func rectOf(r image.Rectangle) Rect {
	return Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// resolveRect picks rect if given, else the named region, else all of
// bounds.
func resolveRect(bounds image.Rectangle, rect *Rect, region string) (image.Rectangle, error) {
	if rect != nil {
		return rect.image(), nil
	}
	r, err := imaging.NamedRegion(bounds, region)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return r, nil
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropArgs struct {
	Path   string  `json:"path"`
	Rect   *Rect   `json:"rect"`
	Region string  `json:"region"`
	Scale  float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	rect, err := resolveRect(img.Bounds(), a.Rect, a.Region)
	if err != nil {
		return nil, err
	}
	cropped, err := imaging.Crop(img, rect, a.Scale)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(cropped)
}

type imageSampleColorArgs struct {
	Path   string                 `json:"path"`
	X      *int                   `json:"x"`
	Y      *int                   `json:"y"`
	Points []imaging.LabeledPoint `json:"points"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	if a.Points != nil {
		samples, err := imaging.SampleColors(img, a.Points)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"samples": samples}, nil
	}
	if a.X == nil || a.Y == nil {
		return nil, fmt.Errorf("%w: x and y or points are required", errInvalidArgs)
	}
	return imaging.SampleColor(img, *a.X, *a.Y)
}

// === Filter Handlers ===

// FilterInfo describes a registered filter.
type FilterInfo struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Category     string              `json:"category"`
	MenuEntry    string              `json:"menu_entry"`
	Capabilities filter.Capabilities `json:"capabilities"`
	Presets      []string            `json:"presets,omitempty"`
}

type filterListArgs struct {
	Category string `json:"category"`
}

func (s *Server) handleFilterList(args json.RawMessage) (interface{}, error) {
	var a filterListArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	filters := s.registry.List()
	if a.Category != "" {
		filters = s.registry.ListByCategory(a.Category)
	}

	infos := make([]FilterInfo, 0, len(filters))
	for _, f := range filters {
		infos = append(infos, FilterInfo{
			ID:           f.ID().ID,
			Name:         f.ID().Name,
			Category:     f.Category(),
			MenuEntry:    f.MenuEntry(),
			Capabilities: f.Capabilities(),
			Presets:      s.presets.ForFilter(f.ID().ID),
		})
	}
	return map[string]interface{}{"filters": infos}, nil
}

type filterArgs struct {
	Filter string `json:"filter"`
}

func (s *Server) lookupFilter(id string) (filter.Filter, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: filter is required", errInvalidArgs)
	}
	return s.registry.Get(id)
}

func (s *Server) handleFilterDefaultConfig(args json.RawMessage) (interface{}, error) {
	var a filterArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := s.lookupFilter(a.Filter)
	if err != nil {
		return nil, err
	}
	return f.FactoryConfiguration(), nil
}

// configArgs are the configuration arguments shared by the filter tools.
type configArgs struct {
	Filter       string                 `json:"filter"`
	Preset       string                 `json:"preset"`
	Config       map[string]interface{} `json:"config"`
	ChannelFlags []bool                 `json:"channel_flags"`
}

// configuration builds the configuration requested by a: the preset (if
// any) with the explicit properties on top, merged over the factory
// configuration of f.
func (s *Server) configuration(f filter.Filter, a configArgs) (*filter.Configuration, error) {
	id := f.ID().ID
	cfg := filter.NewConfiguration(id, 1)

	if a.Preset != "" {
		p, ok := s.presets.Get(a.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", a.Preset)
		}
		if p.Name() != id {
			return nil, fmt.Errorf("preset %s belongs to filter %q, not %q", a.Preset, p.Name(), id)
		}
		cfg = p
	}
	for k, v := range a.Config {
		cfg.SetProperty(k, v)
	}
	if a.ChannelFlags != nil {
		cfg.SetChannelFlags(a.ChannelFlags)
	}

	resolved, err := filter.ResolveConfiguration(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return resolved, nil
}

type filterConfigWidgetArgs struct {
	configArgs
	ForMasks bool `json:"for_masks"`
}

func (s *Server) handleFilterConfigWidget(args json.RawMessage) (interface{}, error) {
	var a filterConfigWidgetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := s.lookupFilter(a.Filter)
	if err != nil {
		return nil, err
	}

	w := f.CreateConfigurationWidget(nil, a.ForMasks)
	if w == nil {
		return nil, fmt.Errorf("filter %s has no configuration widget", f.ID())
	}
	if a.Preset != "" || len(a.Config) > 0 {
		cfg, err := s.configuration(f, a.configArgs)
		if err != nil {
			return nil, err
		}
		if err := w.SetConfiguration(cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
	}

	return map[string]interface{}{
		"filter":        f.ID(),
		"fields":        w.Fields(),
		"configuration": w.Configuration(),
	}, nil
}

type filterRectArgs struct {
	configArgs
	Rect *Rect `json:"rect"`
	Lod  int   `json:"lod"`
}

func (s *Server) handleFilterRect(args json.RawMessage, query func(filter.Filter, image.Rectangle, *filter.Configuration, int) image.Rectangle) (interface{}, error) {
	var a filterRectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Rect == nil {
		return nil, fmt.Errorf("%w: rect is required", errInvalidArgs)
	}
	if a.Lod < 0 {
		return nil, fmt.Errorf("%w: lod must not be negative", errInvalidArgs)
	}
	f, err := s.lookupFilter(a.Filter)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configuration(f, a.configArgs)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"rect": rectOf(query(f, a.Rect.image(), cfg, a.Lod)),
	}, nil
}

type filterApplyArgs struct {
	configArgs
	Path        string `json:"path"`
	Rect        *Rect  `json:"rect"`
	Region      string `json:"region"`
	Lod         int    `json:"lod"`
	TileSize    int    `json:"tile_size"`
	Workers     int    `json:"workers"`
	OutputPath  string `json:"output_path"`
	ReturnImage *bool  `json:"return_image"`
}

// FilterApplyResult is the response of filter_apply.
type FilterApplyResult struct {
	Filter        filter.ID             `json:"filter"`
	Configuration *filter.Configuration `json:"configuration"`
	Rect          Rect                  `json:"rect"`
	NeededRect    Rect                  `json:"needed_rect"`
	ChangedRect   Rect                  `json:"changed_rect"`
	Lod           int                   `json:"lod"`
	Tiles         int                   `json:"tiles"`
	DurationMS    int64                 `json:"duration_ms"`
	OutputPath    string                `json:"output_path,omitempty"`
	Image         *imaging.EncodedImage `json:"image,omitempty"`
}

// handleFilterApply runs a filter over a cached image.
//
// The source image is copied into a device (downscaled when lod > 0), so the
// cached source is never modified. The filter runs tile by tile when tiling is
// enabled and the filter supports threading. If output_path is set, the
// result is saved and cached under that path.
//
// # Errors
//
//   - errInvalidArgs for undecodable arguments, an unknown region, a
//     negative lod or a configuration the filter rejects
//   - Other errors for unknown filters or presets, unreadable images,
//     cancellation and failed saves
func (s *Server) handleFilterApply(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a filterApplyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Lod < 0 {
		return nil, fmt.Errorf("%w: lod must not be negative", errInvalidArgs)
	}
	f, err := s.lookupFilter(a.Filter)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configuration(f, a.configArgs)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	rect, err := resolveRect(img.Bounds(), a.Rect, a.Region)
	if err != nil {
		return nil, err
	}

	dev := device.FromImage(img)
	if a.Lod > 0 {
		dev = device.FromImageAtLod(img, a.Lod)
		rect = filter.NewLodTransform(a.Lod).ScaleRect(rect)
	}

	log := s.log.WithFields(logrus.Fields{
		"filter": f.ID().ID,
		"path":   a.Path,
		"lod":    a.Lod,
	})
	progress := filter.NewLogProgress(log)

	tiles := s.tiles
	if a.TileSize != 0 {
		tiles.Size = a.TileSize
	}
	if a.Workers > 0 {
		tiles.Workers = a.Workers
	}

	var res *filter.Result
	if tiles.Size > 0 && f.Capabilities().SupportsThreading {
		res, err = filter.ApplyTiled(ctx, f, dev, rect, cfg, tiles, progress)
	} else {
		res, err = filter.Apply(ctx, f, dev, rect, cfg, progress)
	}
	if err != nil {
		return nil, err
	}

	out := &FilterApplyResult{
		Filter:        f.ID(),
		Configuration: cfg,
		Rect:          rectOf(res.Rect),
		NeededRect:    rectOf(res.Needed),
		ChangedRect:   rectOf(res.Changed),
		Lod:           a.Lod,
		Tiles:         res.Tiles,
		DurationMS:    res.Duration.Milliseconds(),
	}

	if a.OutputPath != "" {
		if err := imaging.Save(dev.Image(), a.OutputPath); err != nil {
			return nil, err
		}
		s.cache.Put(a.OutputPath, dev.Image())
		out.OutputPath = a.OutputPath
	}
	if a.ReturnImage == nil || *a.ReturnImage {
		enc, err := imaging.EncodePNG(dev.Image())
		if err != nil {
			return nil, err
		}
		out.Image = enc
	}

	log.WithFields(logrus.Fields{
		"tiles":   res.Tiles,
		"changed": res.Changed,
	}).Info("filter applied")
	return out, nil
}

type filterPresetsArgs struct {
	Filter string `json:"filter"`
}

func (s *Server) handleFilterPresets(args json.RawMessage) (interface{}, error) {
	var a filterPresetsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	names := s.presets.Names()
	if a.Filter != "" {
		names = s.presets.ForFilter(a.Filter)
	}

	presets := make(map[string]*filter.Configuration, len(names))
	for _, name := range names {
		presets[name] = s.presets[name]
	}
	return map[string]interface{}{
		"names":   names,
		"presets": presets,
	}, nil
}
