package edgedetection

import (
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// KernelType selects the derivative kernel family.
type KernelType int

const (
	Simple KernelType = iota
	Prewitt
	SobelVector
)

var kernelTypeNames = map[KernelType]string{
	Simple:      "simple",
	Prewitt:     "prewitt",
	SobelVector: "sobol",
}

func (t KernelType) String() string {
	if name, ok := kernelTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseKernelType maps a configuration value to a kernel type. Unknown names
// report false and fall back to SobelVector.
func ParseKernelType(s string) (KernelType, bool) {
	for t, name := range kernelTypeNames {
		if name == s {
			return t, true
		}
	}
	return SobelVector, false
}

// Output selects how the two gradients are combined.
type Output int

const (
	Pythagorean Output = iota
	XGrowth
	XFall
	YGrowth
	YFall
	Radian
)

var outputNames = map[Output]string{
	Pythagorean: "pythagorean",
	XGrowth:     "xGrowth",
	XFall:       "xFall",
	YGrowth:     "yGrowth",
	YFall:       "yFall",
	Radian:      "radian",
}

func (o Output) String() string {
	if name, ok := outputNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOutput maps a configuration value to an output. Unknown names report
// false and fall back to Pythagorean.
func ParseOutput(s string) (Output, bool) {
	for o, name := range outputNames {
		if name == s {
			return o, true
		}
	}
	return Pythagorean, false
}

// KernelSizeFromRadius returns the odd kernel edge length for a radius. The
// smallest kernel is 3; radii above MaxRadius are clamped to it.
func KernelSizeFromRadius(radius float64) int {
	if math.IsNaN(radius) || radius < 0 {
		radius = 0
	}
	radius = math.Min(radius, MaxRadius)
	return max(int(2*math.Ceil(radius)+1), 3)
}

// HorizontalKernel builds the kernel that responds to brightness increasing
// to the right. The window is KernelSizeFromRadius(xRadius) wide; prewitt
// and sobol kernels are KernelSizeFromRadius(yRadius) tall, simple kernels a
// single row.
func HorizontalKernel(xRadius, yRadius float64, t KernelType) *convolution.Kernel {
	w := KernelSizeFromRadius(xRadius)
	h := 1
	if t != Simple {
		h = KernelSizeFromRadius(yRadius)
	}
	return buildKernel(w, h, func(dx, dy float64) float64 {
		return derivative(t, dx, dy, dx)
	})
}

// VerticalKernel builds the kernel that responds to brightness increasing
// downwards. It mirrors HorizontalKernel.
func VerticalKernel(xRadius, yRadius float64, t KernelType) *convolution.Kernel {
	w := 1
	if t != Simple {
		w = KernelSizeFromRadius(xRadius)
	}
	h := KernelSizeFromRadius(yRadius)
	return buildKernel(w, h, func(dx, dy float64) float64 {
		return derivative(t, dx, dy, dy)
	})
}

// derivative is the kernel weight at offset (dx, dy) from the center, where
// along is the offset in the direction the kernel differentiates.
func derivative(t KernelType, dx, dy, along float64) float64 {
	switch t {
	case Prewitt:
		return along
	case Simple:
		if along == 0 {
			return 0
		}
		return 1 / along
	default:
		d2 := dx*dx + dy*dy
		if d2 == 0 {
			return 0
		}
		return along / d2
	}
}

func buildKernel(w, h int, weight func(dx, dy float64) float64) *convolution.Kernel {
	k := convolution.NewKernel(w, h)
	cx, cy := w/2, h/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			k.Matrix[y*w+x] = weight(float64(x-cx), float64(y-cy))
		}
	}
	return k
}

// tap is one non-zero kernel weight at an offset from the center.
type tap struct {
	dx, dy int
	w      float64
}

// taps flattens k into its non-zero weights, scaled so that the positive
// weights sum to one. A unit step across the kernel then yields 1.
func taps(k convolution.Matrix) []tap {
	w, h := k.MaxX(), k.MaxY()
	cx, cy := w/2, h/2

	var positive float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := k.At(x, y); v > 0 {
				positive += v
			}
		}
	}
	if positive == 0 {
		return nil
	}

	var out []tap
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := k.At(x, y); v != 0 {
				out = append(out, tap{dx: x - cx, dy: y - cy, w: v / positive})
			}
		}
	}
	return out
}
