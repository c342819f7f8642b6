package device

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Channel positions inside a pixel. The device always stores non-premultiplied
// 8-bit RGBA, so color channels come first and alpha is last.
const (
	ChannelRed = iota
	ChannelGreen
	ChannelBlue
	ChannelAlpha

	channelCount = 4
)

// Device is a paint surface: a bounded grid of RGBA pixels that filters read
// from and write back to.
//
// Unlike image.NRGBA returned by most decoders, a Device keeps the bounds it
// was created with, so a device produced by CloneRect shares the coordinate
// system of its parent. Filters address pixels in those absolute coordinates.
//
// A Device is not safe for concurrent writes to overlapping regions. Writing
// disjoint regions from several goroutines is fine.
type Device struct {
	img *image.NRGBA
	lod int
}

// New creates a fully transparent device covering bounds.
func New(bounds image.Rectangle) *Device {
	return &Device{img: image.NewNRGBA(bounds.Canon())}
}

// FromImage copies img into a new device with the same bounds.
func FromImage(img image.Image) *Device {
	b := img.Bounds()
	// imaging.Clone normalizes the origin to (0,0); shift it back.
	cloned := imaging.Clone(img)
	cloned.Rect = image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	return &Device{img: cloned}
}

// Bounds returns the device extent.
func (d *Device) Bounds() image.Rectangle {
	return d.img.Rect
}

// Image exposes the backing image. Mutating it mutates the device.
func (d *Device) Image() *image.NRGBA {
	return d.img
}

// Lod is the level of detail the device holds: 0 for full resolution, n for
// an image downscaled n times by two. Filters scale their radii with it.
func (d *Device) Lod() int {
	return d.lod
}

// SetLod records the level of detail of the device contents.
func (d *Device) SetLod(lod int) {
	if lod < 0 {
		lod = 0
	}
	d.lod = lod
}

// ChannelCount is the number of channels per pixel, alpha included.
func (d *Device) ChannelCount() int {
	return channelCount
}

// AlphaPos is the index of the alpha channel.
func (d *Device) AlphaPos() int {
	return ChannelAlpha
}

// Clone returns a deep copy of the device.
func (d *Device) Clone() *Device {
	return d.CloneRect(d.Bounds())
}

// CloneRect copies the part of the device inside r. The copy keeps absolute
// coordinates; its bounds are r clipped to the device.
func (d *Device) CloneRect(r image.Rectangle) *Device {
	r = r.Intersect(d.Bounds())
	out := New(r)
	out.lod = d.lod
	out.CopyFrom(d, r)
	return out
}

// CopyFrom copies the pixels of src inside r into d. Only the overlap of r
// with both devices is touched.
func (d *Device) CopyFrom(src *Device, r image.Rectangle) {
	r = r.Intersect(d.Bounds()).Intersect(src.Bounds())
	if r.Empty() {
		return
	}
	rowBytes := r.Dx() * channelCount
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := d.img.PixOffset(r.Min.X, y)
		si := src.img.PixOffset(r.Min.X, y)
		copy(d.img.Pix[di:di+rowBytes], src.img.Pix[si:si+rowBytes])
	}
}

// Fill paints every pixel in r with c.
func (d *Device) Fill(r image.Rectangle, c color.Color) {
	draw.Draw(d.img, r.Intersect(d.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// At returns the non-premultiplied pixel at (x, y). Pixels outside the device
// are transparent black.
func (d *Device) At(x, y int) color.NRGBA {
	return d.img.NRGBAAt(x, y)
}

// Set stores c at (x, y). Writes outside the device are ignored.
func (d *Device) Set(x, y int, c color.NRGBA) {
	d.img.SetNRGBA(x, y, c)
}

// FromImageAtLod builds a device holding img downscaled to level of detail
// lod. Each level halves both dimensions (never below one pixel) and the
// origin is scaled with them.
func FromImageAtLod(img image.Image, lod int) *Device {
	if lod <= 0 {
		return FromImage(img)
	}
	b := img.Bounds()
	w := max(b.Dx()>>lod, 1)
	h := max(b.Dy()>>lod, 1)
	if b.Empty() {
		w, h = 0, 0
	}

	scaled := imaging.Resize(img, w, h, imaging.Box)
	origin := image.Pt(b.Min.X>>lod, b.Min.Y>>lod)
	scaled.Rect = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}

	d := &Device{img: scaled}
	d.SetLod(lod)
	return d
}
