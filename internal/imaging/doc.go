// Package imaging handles image files for the filter host: loading and
// caching source images, encoding results, cropping and sampling colors.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Regions
// use image.Rectangle semantics: Min is inclusive, Max is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless
// and never modify their input image.
//
// # Color Representation
//
// Sampled colors are reported as hex "#RRGGBB", 8-bit RGB and RGBA, and HSL
// with hue in degrees and saturation/lightness in percent.
package imaging
