package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// EncodedImage is an image ready to be returned to an MCP client.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes an image as a base64 PNG for transport over JSON-RPC.
//
// Parameters:
//   - img: The image to encode. Any image.Image works; the bounds origin is
//     not preserved.
//
// Returns:
//   - *EncodedImage: Dimensions, base64 data and the "image/png" MIME type.
//   - error: Non-nil if PNG encoding fails.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes an image to disk.
//
// Parameters:
//   - img: The image to write.
//   - path: Destination file. The extension selects the format (.png, .jpg,
//     .jpeg, .gif, .tif, .tiff, .bmp). Missing parent directories are created.
//
// # Errors
//
//   - Returns error if the extension is not a supported format
//   - Returns error if the directory cannot be created or the file cannot be written
func Save(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("cannot save %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
