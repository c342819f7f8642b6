package edgedetection

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/edge-filter-mcp/internal/device"
	"github.com/ironsheep/edge-filter-mcp/internal/filter"
)

// stepDevice is black on the left half and white on the right half.
func stepDevice(w, h int) *device.Device {
	dev := device.New(image.Rect(0, 0, w, h))
	dev.Fill(image.Rect(0, 0, w/2, h), color.NRGBA{0, 0, 0, 255})
	dev.Fill(image.Rect(w/2, 0, w, h), color.NRGBA{255, 255, 255, 255})
	return dev
}

// squareDevice has a white square on a black background.
func squareDevice(w, h int) *device.Device {
	dev := device.New(image.Rect(0, 0, w, h))
	dev.Fill(dev.Bounds(), color.NRGBA{0, 0, 0, 255})
	dev.Fill(image.Rect(w/4, h/4, 3*w/4, 3*h/4), color.NRGBA{255, 255, 255, 255})
	return dev
}

func params(kt KernelType, o Output) Params {
	return Params{XRadius: 1, YRadius: 1, Type: kt, Output: o}
}

func TestApplyEdgeDetection_StepEdge(t *testing.T) {
	for _, kt := range []KernelType{Simple, Prewitt, SobelVector} {
		t.Run(kt.String(), func(t *testing.T) {
			dev := stepDevice(20, 10)
			require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), params(kt, Pythagorean), nil))

			// The boundary is between x=9 and x=10.
			assert.Equal(t, color.NRGBA{255, 255, 255, 255}, dev.At(9, 5))
			assert.Equal(t, color.NRGBA{255, 255, 255, 255}, dev.At(10, 5))
			assert.Equal(t, color.NRGBA{0, 0, 0, 255}, dev.At(3, 5))
			assert.Equal(t, color.NRGBA{0, 0, 0, 255}, dev.At(16, 5))
			// Repeated borders produce no edge at the device rim.
			assert.Equal(t, color.NRGBA{0, 0, 0, 255}, dev.At(0, 0))
			assert.Equal(t, color.NRGBA{0, 0, 0, 255}, dev.At(19, 9))
		})
	}
}

func TestApplyEdgeDetection_UniformImage(t *testing.T) {
	dev := device.New(image.Rect(0, 0, 16, 16))
	dev.Fill(dev.Bounds(), color.NRGBA{128, 64, 200, 90})

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), params(SobelVector, Pythagorean), nil))

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			require.Equal(t, color.NRGBA{0, 0, 0, 255}, dev.At(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestApplyEdgeDetection_Outputs(t *testing.T) {
	tests := []struct {
		output Output
		edge   uint8 // value at x=9, on the dark side of the boundary
		flat   uint8 // value far from the boundary
	}{
		{Pythagorean, 255, 0},
		{XGrowth, 255, 128},
		{XFall, 0, 128},
		{YGrowth, 128, 128},
		{YFall, 128, 128},
		{Radian, 128, 0},
	}

	for _, tt := range tests {
		t.Run(tt.output.String(), func(t *testing.T) {
			dev := stepDevice(20, 10)
			require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), params(Prewitt, tt.output), nil))

			assert.Equal(t, tt.edge, dev.At(9, 5).R, "edge")
			assert.Equal(t, tt.flat, dev.At(3, 5).R, "flat")
			assert.Equal(t, uint8(255), dev.At(9, 5).A)
		})
	}
}

func TestApplyEdgeDetection_VerticalGradient(t *testing.T) {
	dev := device.New(image.Rect(0, 0, 10, 20))
	dev.Fill(image.Rect(0, 0, 10, 10), color.NRGBA{255, 255, 255, 255})
	dev.Fill(image.Rect(0, 10, 10, 20), color.NRGBA{0, 0, 0, 255})

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), params(Prewitt, YFall), nil))

	// Brightness falls going down, so yFall lights up at the boundary.
	assert.Equal(t, uint8(255), dev.At(5, 10).R)
	assert.Equal(t, uint8(128), dev.At(5, 2).R)
}

func TestApplyEdgeDetection_WriteToAlpha(t *testing.T) {
	dev := stepDevice(20, 10)
	dev.Set(3, 5, color.NRGBA{0, 0, 0, 255})
	p := params(Prewitt, Pythagorean)
	p.WriteToAlpha = true

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), p, nil))

	// Color survives, alpha carries the edge strength.
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, dev.At(9, 5))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, dev.At(10, 5))
	assert.Equal(t, color.NRGBA{0, 0, 0, 0}, dev.At(3, 5))
	assert.Equal(t, color.NRGBA{255, 255, 255, 0}, dev.At(16, 5))
}

func TestApplyEdgeDetection_WriteToAlphaKeepsLowerAlpha(t *testing.T) {
	dev := device.New(image.Rect(0, 0, 20, 10))
	dev.Fill(image.Rect(0, 0, 10, 10), color.NRGBA{0, 0, 0, 100})
	dev.Fill(image.Rect(10, 0, 20, 10), color.NRGBA{255, 255, 255, 100})
	p := params(Prewitt, Pythagorean)
	p.WriteToAlpha = true

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), p, nil))

	assert.Equal(t, uint8(100), dev.At(9, 5).A)
}

func TestApplyEdgeDetection_ChannelFlags(t *testing.T) {
	dev := stepDevice(20, 10)
	p := params(Prewitt, Pythagorean)
	p.ChannelFlags = []bool{false, true, true, false}

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), p, nil))

	// Red keeps the source value, green and blue carry the edges.
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, dev.At(3, 5))
	assert.Equal(t, color.NRGBA{0, 255, 255, 255}, dev.At(9, 5))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, dev.At(16, 5))
}

func TestApplyEdgeDetection_OnlyWritesRect(t *testing.T) {
	dev := squareDevice(32, 32)
	before := dev.Clone()
	rect := image.Rect(4, 4, 12, 20)

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, rect, params(SobelVector, Pythagorean), nil))

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if image.Pt(x, y).In(rect) {
				continue
			}
			require.Equal(t, before.At(x, y), dev.At(x, y), "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, uint8(255), dev.At(8, 8).R, "square corner is an edge")
}

func TestApplyEdgeDetection_Progress(t *testing.T) {
	dev := squareDevice(16, 24)
	var last int
	progress := filter.NewFuncProgress(func(pct int) { last = pct })

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, dev.Bounds(), params(Prewitt, Pythagorean), progress))

	assert.Equal(t, 100, last)
}

func TestApplyEdgeDetection_Cancelled(t *testing.T) {
	dev := squareDevice(16, 16)
	before := dev.Clone()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ApplyEdgeDetection(ctx, dev, dev.Bounds(), params(Prewitt, Pythagorean), nil)

	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Equal(t, before.Image().Pix, dev.Image().Pix)
}

func TestApplyEdgeDetection_EmptyRect(t *testing.T) {
	dev := squareDevice(8, 8)
	before := dev.Clone()

	require.NoError(t, ApplyEdgeDetection(context.Background(), dev, image.Rect(100, 100, 120, 120), params(Prewitt, Pythagorean), nil))
	assert.Equal(t, before.Image().Pix, dev.Image().Pix)
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name   string
		output Output
		gx, gy float64
		want   float64
	}{
		{"magnitude", Pythagorean, 0.3, 0.4, 0.5},
		{"magnitude clamps", Pythagorean, 1, 1, 1},
		{"x growth", XGrowth, 0.5, 0, 0.75},
		{"x fall", XFall, 0.5, 0, 0.25},
		{"y growth", YGrowth, 0, -1, 0},
		{"y fall", YFall, 0, -1, 1},
		{"radian right", Radian, 1, 0, 0.5},
		{"radian down", Radian, 0, 1, 0.75},
		{"radian flat", Radian, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, combine(tt.output, tt.gx, tt.gy), 1e-9)
		})
	}
}
