package edgedetection

import (
	"context"
	"image"
	"math"
	"sync/atomic"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/edge-filter-mcp/internal/device"
	"github.com/ironsheep/edge-filter-mcp/internal/filter"
)

// Params are the resolved inputs of ApplyEdgeDetection.
type Params struct {
	// XRadius and YRadius are kernel radii in device pixels, already scaled
	// to the device level of detail.
	XRadius, YRadius float64
	Type             KernelType
	Output           Output
	// WriteToAlpha keeps the color and stores the edge strength in alpha.
	WriteToAlpha bool
	// ChannelFlags limits which channels are written; nil writes all.
	ChannelFlags []bool
}

// reach returns how far the kernels of p extend from the center pixel.
func (p Params) reach() image.Point {
	hk := HorizontalKernel(p.XRadius, p.YRadius, p.Type)
	vk := VerticalKernel(p.XRadius, p.YRadius, p.Type)
	return image.Pt(max(hk.MaxX(), vk.MaxX())/2, max(hk.MaxY(), vk.MaxY())/2)
}

// ApplyEdgeDetection replaces rect of dev with its edge response.
//
// Pixels around rect (up to the kernel reach) are read but never written;
// outside the device they repeat the border. Rows are processed in
// parallel and reported to progress one row at a time. When ctx is
// cancelled the device is left untouched and ctx.Err() is returned.
func ApplyEdgeDetection(ctx context.Context, dev *device.Device, rect image.Rectangle, p Params, progress filter.ProgressUpdater) error {
	rect = rect.Intersect(dev.Bounds())
	if rect.Empty() {
		return nil
	}

	hTaps := taps(HorizontalKernel(p.XRadius, p.YRadius, p.Type))
	vTaps := taps(VerticalKernel(p.XRadius, p.YRadius, p.Type))

	r := p.reach()
	src := dev.ReadPlanes(image.Rect(rect.Min.X-r.X, rect.Min.Y-r.Y, rect.Max.X+r.X, rect.Max.Y+r.Y))
	out := device.NewPlanes(rect)

	alpha := dev.AlphaPos()
	colors := dev.ChannelCount() - 1
	counter := filter.NewCounter(progress, rect.Dy())
	var cancelled atomic.Bool

	parallel.Line(rect.Dy(), func(start, end int) {
		v := make([]float64, colors)
		for row := start; row < end; row++ {
			if cancelled.Load() {
				return
			}
			if ctx.Err() != nil {
				cancelled.Store(true)
				return
			}

			y := rect.Min.Y + row
			for x := rect.Min.X; x < rect.Max.X; x++ {
				i := out.Index(x, y)
				si := src.Index(x, y)

				for c := 0; c < colors; c++ {
					plane := src.Data[c]
					gx := correlate(src, plane, x, y, hTaps)
					gy := correlate(src, plane, x, y, vTaps)
					v[c] = combine(p.Output, gx, gy)
				}

				origAlpha := src.Data[alpha][si]
				if p.WriteToAlpha {
					var sum float64
					for c := 0; c < colors; c++ {
						out.Data[c][i] = src.Data[c][si]
						sum += v[c]
					}
					out.Data[alpha][i] = math.Min(sum/float64(colors), origAlpha)
				} else {
					for c := 0; c < colors; c++ {
						out.Data[c][i] = v[c]
					}
					out.Data[alpha][i] = 1
				}
			}
			counter.Add(1)
		}
	})

	if cancelled.Load() {
		return ctx.Err()
	}
	dev.WritePlanes(out, p.ChannelFlags)
	return nil
}

// correlate sums the weighted neighbors of (x, y) in one channel plane.
func correlate(src *device.Planes, plane []float64, x, y int, ts []tap) float64 {
	var sum float64
	for _, t := range ts {
		sum += plane[src.Index(x+t.dx, y+t.dy)] * t.w
	}
	return sum
}

// combine maps a gradient pair to an output value in [0, 1].
func combine(o Output, gx, gy float64) float64 {
	var v float64
	switch o {
	case XGrowth:
		v = 0.5 + gx/2
	case XFall:
		v = 0.5 - gx/2
	case YGrowth:
		v = 0.5 + gy/2
	case YFall:
		v = 0.5 - gy/2
	case Radian:
		if gx == 0 && gy == 0 {
			return 0
		}
		v = (math.Atan2(gy, gx) + math.Pi) / (2 * math.Pi)
	default:
		v = math.Sqrt(gx*gx + gy*gy)
	}
	return math.Max(0, math.Min(1, v))
}
