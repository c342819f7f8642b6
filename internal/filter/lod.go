package filter

import (
	"image"
	"math"
)

// LodTransform converts distances between full resolution and a level of
// detail. Level n is the image downscaled n times by two.
type LodTransform struct {
	lod   int
	scale float64
}

// NewLodTransform creates a transform for level lod. Negative levels are
// treated as 0.
func NewLodTransform(lod int) LodTransform {
	if lod < 0 {
		lod = 0
	}
	return LodTransform{lod: lod, scale: math.Ldexp(1, -lod)}
}

func (t LodTransform) Lod() int { return t.lod }

// Scale converts a full resolution distance to this level.
func (t LodTransform) Scale(v float64) float64 {
	return v * t.scale
}

// ScaleRect converts a full resolution rectangle to this level, growing it so
// the result still covers every scaled pixel.
func (t LodTransform) ScaleRect(r image.Rectangle) image.Rectangle {
	if t.lod == 0 {
		return r
	}
	return image.Rect(
		int(math.Floor(t.Scale(float64(r.Min.X)))),
		int(math.Floor(t.Scale(float64(r.Min.Y)))),
		int(math.Ceil(t.Scale(float64(r.Max.X)))),
		int(math.Ceil(t.Scale(float64(r.Max.Y)))),
	)
}
