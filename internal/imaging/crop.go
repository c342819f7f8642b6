package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region from an image and optionally rescales it.
//
// Parameters:
//   - img: The source image. It is never modified.
//   - rect: The region to extract, in the coordinates of img.Bounds(). Min
//     is inclusive and Max exclusive.
//   - scale: Resize factor applied after cropping. 0 or 1 keeps the original
//     size; other values resize with a Lanczos filter, never below 1x1.
//
// Returns:
//   - *image.NRGBA: The cropped (and scaled) region, with its origin at (0,0).
//   - error: Non-nil if the region or scale is invalid.
//
// # Errors
//
//   - Returns error if rect is empty
//   - Returns error if rect is not fully inside the image
//   - Returns error if scale is negative
func Crop(img image.Image, rect image.Rectangle, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", rect)
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, bounds)
	}
	if scale < 0 {
		return nil, fmt.Errorf("invalid scale %g", scale)
	}

	cropped := imaging.Crop(img, rect)
	if scale != 0 && scale != 1 {
		w := max(int(float64(cropped.Bounds().Dx())*scale), 1)
		h := max(int(float64(cropped.Bounds().Dy())*scale), 1)
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}
	return cropped, nil
}

// NamedRegion resolves a region name to a rectangle inside bounds.
//
// Parameters:
//   - bounds: The image bounds the region is taken from.
//   - name: One of "full" (or ""), "top-left", "top-right", "bottom-left",
//     "bottom-right", "top-half", "bottom-half", "left-half", "right-half"
//     or "center".
//
// Returns:
//   - image.Rectangle: The region, offset by bounds.Min. "center" is the
//     middle half of the image on both axes.
//   - error: Non-nil if name is not a known region.
func NamedRegion(bounds image.Rectangle, name string) (image.Rectangle, error) {
	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := w/2, h/2

	var r image.Rectangle
	switch name {
	case "full", "":
		r = image.Rect(0, 0, w, h)
	case "top-left":
		r = image.Rect(0, 0, midX, midY)
	case "top-right":
		r = image.Rect(midX, 0, w, midY)
	case "bottom-left":
		r = image.Rect(0, midY, midX, h)
	case "bottom-right":
		r = image.Rect(midX, midY, w, h)
	case "top-half":
		r = image.Rect(0, 0, w, midY)
	case "bottom-half":
		r = image.Rect(0, midY, w, h)
	case "left-half":
		r = image.Rect(0, 0, midX, h)
	case "right-half":
		r = image.Rect(midX, 0, w, h)
	case "center":
		// middle 50% on both axes
		r = image.Rect(w/4, h/4, w-w/4, h-h/4)
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}
	return r.Add(bounds.Min), nil
}
