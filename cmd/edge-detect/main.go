// Command edge-detect runs a registered filter over an image file.
//
//	edge-detect -in photo.jpg -out edges.png -set type=sobol -set horizRadius=2
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/edge-filter-mcp/internal/device"
	"github.com/ironsheep/edge-filter-mcp/internal/edgedetection"
	"github.com/ironsheep/edge-filter-mcp/internal/filter"
	"github.com/ironsheep/edge-filter-mcp/internal/imaging"
)

// properties collects repeated -set key=value flags.
type properties map[string]any

func (p properties) String() string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, ",")
}

func (p properties) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	p[key] = parseValue(value)
	return nil
}

// parseValue reads numbers and booleans as such and keeps anything else as
// a string.
func parseValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

type options struct {
	in, out     string
	filterID    string
	presetsPath string
	preset      string
	props       properties
	lod         int
	tileSize    int
	workers     int
	debug       bool
	list        bool
}

func main() {
	opts := options{props: properties{}}
	flag.StringVar(&opts.in, "in", "", "input image")
	flag.StringVar(&opts.out, "out", "edges.png", "output image; format follows the extension")
	flag.StringVar(&opts.filterID, "filter", edgedetection.ID().ID, "filter id")
	flag.StringVar(&opts.presetsPath, "presets", os.Getenv("IMAGE_MCP_PRESETS"), "YAML preset file")
	flag.StringVar(&opts.preset, "preset", "", "preset to start from")
	flag.Var(opts.props, "set", "configuration property as key=value (repeatable)")
	flag.IntVar(&opts.lod, "lod", 0, "level of detail; each level halves the resolution")
	flag.IntVar(&opts.tileSize, "tile", 256, "tile edge length; 0 processes the image in one pass")
	flag.IntVar(&opts.workers, "workers", 4, "tiles processed at once")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&opts.list, "list", false, "list filters and exit")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if opts.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	filter.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.WithError(err).Error("edge-detect failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *logrus.Logger) error {
	registry := filter.NewRegistry()
	plugins, err := filter.LoadPlugins(registry)
	if err != nil {
		return err
	}
	defer func() {
		for _, p := range plugins {
			_ = p.Close()
		}
	}()

	if opts.list {
		for _, f := range registry.List() {
			fmt.Printf("%-20s %-20s %s\n", f.ID().ID, f.Category(), f.ID().Name)
		}
		return nil
	}
	if opts.in == "" {
		return fmt.Errorf("-in is required")
	}

	f, err := registry.Get(opts.filterID)
	if err != nil {
		return err
	}
	cfg, err := buildConfiguration(f, opts)
	if err != nil {
		return err
	}

	img, err := imaging.NewImageCache().Load(opts.in)
	if err != nil {
		return err
	}
	dev := device.FromImageAtLod(img, opts.lod)

	log := logger.WithFields(logrus.Fields{"filter": f.ID().ID, "in": opts.in})
	progress := filter.NewLogProgress(log)

	res, err := apply(ctx, f, dev, cfg, opts, progress)
	if err != nil {
		return err
	}

	if err := imaging.Save(dev.Image(), opts.out); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"out":      opts.out,
		"size":     dev.Bounds().Size(),
		"tiles":    res.Tiles,
		"duration": res.Duration,
	}).Info("filter applied")
	return nil
}

// apply runs f over the whole device, tile by tile when tiling is enabled
// and f supports threading.
func apply(ctx context.Context, f filter.Filter, dev *device.Device, cfg *filter.Configuration, opts options, progress filter.ProgressUpdater) (*filter.Result, error) {
	if opts.tileSize > 0 && f.Capabilities().SupportsThreading {
		return filter.ApplyTiled(ctx, f, dev, dev.Bounds(), cfg, filter.TileOptions{Size: opts.tileSize, Workers: opts.workers}, progress)
	}
	return filter.Apply(ctx, f, dev, dev.Bounds(), cfg, progress)
}

// buildConfiguration starts from the preset, if any, and applies the -set
// properties on top.
func buildConfiguration(f filter.Filter, opts options) (*filter.Configuration, error) {
	cfg := filter.NewConfiguration(f.ID().ID, 1)

	if opts.preset != "" {
		if opts.presetsPath == "" {
			return nil, fmt.Errorf("-preset needs -presets or IMAGE_MCP_PRESETS")
		}
		presets, err := filter.LoadPresetFile(opts.presetsPath)
		if err != nil {
			return nil, err
		}
		p, ok := presets.Get(opts.preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", opts.preset)
		}
		if p.Name() != f.ID().ID {
			return nil, fmt.Errorf("preset %s belongs to filter %q", opts.preset, p.Name())
		}
		cfg = p
	}
	for k, v := range opts.props {
		cfg.SetProperty(k, v)
	}
	return filter.ResolveConfiguration(f, cfg)
}
