// Package device provides the paint surface filters read from and write to.
//
// A Device wraps an *image.NRGBA whose bounds may start anywhere, so a tile
// cut from a larger image keeps the coordinates of the original. Devices
// built at a level of detail (FromImageAtLod) are downscaled by 2^lod and
// remember the level so filters can scale their radii to match.
//
// # Channel Planes
//
// Filters work on Planes: one float64 plane per channel, normalized to
// [0,1], in R, G, B, A order. ReadPlanes repeats the nearest border pixel for
// coordinates outside the device. WritePlanes drops pixels outside the device
// and leaves channels whose flag is false untouched.
//
// # Thread Safety
//
// A Device is not safe for concurrent use. Filters that work in parallel
// read planes once, fill their output planes from several goroutines and
// write them back from one.
package device
