package device

import (
	"image"
	"math"
)

// Planes holds a rectangle of pixel data as normalized channel planes.
//
// Data[c] is a row-major slice of Rect.Dx()*Rect.Dy() values in [0, 1] for
// channel c. Planes are the working format of filters: they are signed-safe
// floats, so intermediate results such as gradients can go outside [0, 1]
// before being written back.
type Planes struct {
	Rect image.Rectangle
	Data [channelCount][]float64
}

// NewPlanes allocates zeroed planes covering r.
func NewPlanes(r image.Rectangle) *Planes {
	p := &Planes{Rect: r}
	n := r.Dx() * r.Dy()
	for c := range p.Data {
		p.Data[c] = make([]float64, n)
	}
	return p
}

// Index returns the offset of absolute coordinate (x, y) inside a plane.
func (p *Planes) Index(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Rect.Dx() + (x - p.Rect.Min.X)
}

// At returns channel c at absolute coordinate (x, y).
func (p *Planes) At(c, x, y int) float64 {
	return p.Data[c][p.Index(x, y)]
}

// ReadPlanes converts the pixels inside r to normalized planes.
//
// r may extend past the device: those samples repeat the nearest border
// pixel, the same way a convolution with repeated borders sees them. An
// empty device reads as transparent black everywhere.
func (d *Device) ReadPlanes(r image.Rectangle) *Planes {
	p := NewPlanes(r)
	b := d.Bounds()
	if b.Empty() || r.Empty() {
		return p
	}

	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := clamp(y, b.Min.Y, b.Max.Y-1)
		for x := r.Min.X; x < r.Max.X; x++ {
			sx := clamp(x, b.Min.X, b.Max.X-1)
			off := d.img.PixOffset(sx, sy)
			px := d.img.Pix[off : off+channelCount : off+channelCount]
			for c := 0; c < channelCount; c++ {
				p.Data[c][i] = float64(px[c]) / 255.0
			}
			i++
		}
	}
	return p
}

// WritePlanes stores planes back into the device.
//
// Only channels whose flag is set are written; flags shorter than the channel
// count leave the remaining channels untouched, and a nil slice writes all
// channels. Values are clamped to [0, 1] and rounded to 8 bits. Samples
// outside the device are dropped.
func (d *Device) WritePlanes(p *Planes, flags []bool) {
	r := p.Rect.Intersect(d.Bounds())
	if r.Empty() {
		return
	}

	var write [channelCount]bool
	for c := range write {
		write[c] = flags == nil || (c < len(flags) && flags[c])
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := p.Index(x, y)
			off := d.img.PixOffset(x, y)
			for c := 0; c < channelCount; c++ {
				if write[c] {
					d.img.Pix[off+c] = toByte(p.Data[c][i])
				}
			}
		}
	}
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
