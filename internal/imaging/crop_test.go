package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	out, err := Crop(img, image.Rect(0, 0, 50, 50), 1)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(25, 25))
}

func TestCrop_Content(t *testing.T) {
	img := createPatternImage(100, 100)

	out, err := Crop(img, image.Rect(50, 50, 100, 100), 0)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(0, 0))
}

func TestCrop_Scale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.NRGBA{255, 0, 0, 255})

	tests := []struct {
		scale float64
		want  image.Rectangle
	}{
		{2, image.Rect(0, 0, 100, 100)},
		{0.5, image.Rect(0, 0, 25, 25)},
		{0.001, image.Rect(0, 0, 1, 1)},
	}
	for _, tt := range tests {
		out, err := Crop(img, image.Rect(0, 0, 50, 50), tt.scale)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out.Bounds(), "scale %v", tt.scale)
	}
}

func TestCrop_Errors(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name  string
		rect  image.Rectangle
		scale float64
	}{
		{"outside", image.Rect(50, 50, 150, 150), 1},
		{"negative origin", image.Rect(-1, 0, 10, 10), 1},
		{"empty", image.Rect(10, 10, 10, 20), 1},
		{"negative scale", image.Rect(0, 0, 10, 10), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.rect, tt.scale)
			assert.Error(t, err)
		})
	}
}

func TestNamedRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 60)

	tests := []struct {
		name string
		want image.Rectangle
	}{
		{"full", bounds},
		{"", bounds},
		{"top-left", image.Rect(0, 0, 50, 30)},
		{"top-right", image.Rect(50, 0, 100, 30)},
		{"bottom-left", image.Rect(0, 30, 50, 60)},
		{"bottom-right", image.Rect(50, 30, 100, 60)},
		{"top-half", image.Rect(0, 0, 100, 30)},
		{"bottom-half", image.Rect(0, 30, 100, 60)},
		{"left-half", image.Rect(0, 0, 50, 60)},
		{"right-half", image.Rect(50, 0, 100, 60)},
		{"center", image.Rect(25, 15, 75, 45)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NamedRegion(bounds, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NamedRegion(bounds, "middle-ish")
	assert.Error(t, err)
}

func TestNamedRegion_OffsetBounds(t *testing.T) {
	got, err := NamedRegion(image.Rect(10, 20, 30, 40), "bottom-right")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(20, 30, 30, 40), got)
}

func TestEncodePNG(t *testing.T) {
	img := createPatternImage(12, 8)

	enc, err := EncodePNG(img)
	require.NoError(t, err)

	assert.Equal(t, 12, enc.Width)
	assert.Equal(t, 8, enc.Height)
	assert.Equal(t, "image/png", enc.MimeType)

	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 8), decoded.Bounds())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.png")

	require.NoError(t, Save(createPatternImage(6, 6), path))

	dims, err := GetDimensions(NewImageCache(), path)
	require.NoError(t, err)
	assert.Equal(t, 6, dims.Width)

	assert.Error(t, Save(createPatternImage(6, 6), filepath.Join(dir, "out.unknown")))
}
