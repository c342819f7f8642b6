package filter

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/edge-filter-mcp/internal/device"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used by Apply and ApplyTiled.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger = l
}

// Result describes a completed filter run.
type Result struct {
	// Rect is the area that was processed, clipped to the device.
	Rect image.Rectangle `json:"rect"`
	// Needed is the area the filter read.
	Needed image.Rectangle `json:"needed_rect"`
	// Changed is the area whose rendering depends on pixels inside Rect.
	Changed image.Rectangle `json:"changed_rect"`
	// Tiles is the number of tiles processed; 1 for untiled runs.
	Tiles int `json:"tiles"`
	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration_ns"`
}

// ResolveConfiguration merges cfg over the filter's factory configuration
// and validates the result, including the filter's own checks when it
// implements ConfigurationValidator. A nil cfg yields the factory
// configuration.
func ResolveConfiguration(f Filter, cfg *Configuration) (*Configuration, error) {
	resolved := f.FactoryConfiguration()
	if resolved == nil {
		resolved = NewConfiguration(f.ID().ID, 1)
	}
	resolved.Merge(cfg)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}
	if v, ok := f.(ConfigurationValidator); ok {
		if err := v.ValidateConfiguration(resolved); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// Apply runs f over rect of dev.
//
// cfg is merged over the factory configuration, so callers only need to set
// what they change. A rect that does not overlap the device is a no-op.
func Apply(ctx context.Context, f Filter, dev *device.Device, rect image.Rectangle, cfg *Configuration, progress ProgressUpdater) (*Result, error) {
	if f == nil || dev == nil {
		return nil, fmt.Errorf("filter and device are required")
	}
	resolved, err := ResolveConfiguration(f, cfg)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = NopProgress{}
	}

	rect = rect.Intersect(dev.Bounds())
	res := &Result{Rect: rect}
	if rect.Empty() {
		return res, nil
	}

	lod := dev.Lod()
	res.Needed = f.NeededRect(rect, resolved, lod)
	res.Changed = f.ChangedRect(rect, resolved, lod).Intersect(dev.Bounds())
	res.Tiles = 1

	log := logger.WithFields(logrus.Fields{
		"filter": f.ID().ID,
		"rect":   rect.String(),
		"lod":    lod,
	})
	log.Debug("applying filter")

	start := time.Now()
	if err := f.Process(ctx, dev, rect, resolved, progress); err != nil {
		log.WithError(err).Warn("filter failed")
		return nil, fmt.Errorf("filter %s failed: %w", f.ID().ID, err)
	}
	res.Duration = time.Since(start)

	log.WithField("duration", res.Duration).Debug("filter applied")
	return res, nil
}

// TileOptions controls ApplyTiled.
type TileOptions struct {
	// Size is the edge length of a square tile. Values below 1 use 256.
	Size int
	// Workers bounds the number of tiles processed at once. Values below 1
	// process tiles one at a time.
	Workers int
}

// ApplyTiled runs f over rect of dev tile by tile.
//
// Each tile is processed on a scratch copy of the original pixels covering
// the tile's NeededRect, then copied back. Because every tile reads the
// unmodified source, the output is the same as a single Apply over rect.
// progress counts completed tiles.
func ApplyTiled(ctx context.Context, f Filter, dev *device.Device, rect image.Rectangle, cfg *Configuration, opts TileOptions, progress ProgressUpdater) (*Result, error) {
	if f == nil || dev == nil {
		return nil, fmt.Errorf("filter and device are required")
	}
	resolved, err := ResolveConfiguration(f, cfg)
	if err != nil {
		return nil, err
	}
	if opts.Size < 1 {
		opts.Size = 256
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	rect = rect.Intersect(dev.Bounds())
	res := &Result{Rect: rect}
	if rect.Empty() {
		return res, nil
	}

	lod := dev.Lod()
	res.Needed = f.NeededRect(rect, resolved, lod)
	res.Changed = f.ChangedRect(rect, resolved, lod).Intersect(dev.Bounds())

	tiles := splitTiles(rect, opts.Size)
	res.Tiles = len(tiles)
	counter := NewCounter(progress, len(tiles))

	log := logger.WithFields(logrus.Fields{
		"filter":  f.ID().ID,
		"rect":    rect.String(),
		"tiles":   len(tiles),
		"workers": opts.Workers,
	})
	log.Debug("applying filter in tiles")

	start := time.Now()
	source := dev.Clone()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, tile := range tiles {
		tile := tile
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scratch := source.CloneRect(f.NeededRect(tile, resolved, lod))
			if err := f.Process(gctx, scratch, tile, resolved, NopProgress{}); err != nil {
				return fmt.Errorf("tile %v: %w", tile, err)
			}
			dev.CopyFrom(scratch, tile)
			counter.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("tiled filter failed")
		return nil, fmt.Errorf("filter %s failed: %w", f.ID().ID, err)
	}
	res.Duration = time.Since(start)

	log.WithField("duration", res.Duration).Debug("filter applied")
	return res, nil
}

// splitTiles cuts r into size x size tiles in row-major order. Tiles on the
// right and bottom edges may be smaller.
func splitTiles(r image.Rectangle, size int) []image.Rectangle {
	var tiles []image.Rectangle
	for y := r.Min.Y; y < r.Max.Y; y += size {
		for x := r.Min.X; x < r.Max.X; x += size {
			tiles = append(tiles, image.Rect(x, y, x+size, y+size).Intersect(r))
		}
	}
	return tiles
}
