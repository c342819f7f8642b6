// Package edgedetection is the edge detection filter plugin.
//
// The filter computes a horizontal and a vertical gradient for every color
// channel by correlating the device with a pair of derivative kernels, then
// combines them into one of several outputs:
//
//   - pythagorean: gradient magnitude, sqrt(gx² + gy²)
//   - xGrowth / xFall: signed horizontal gradient around mid gray
//   - yGrowth / yFall: signed vertical gradient around mid gray
//   - radian: gradient direction, atan2(gy, gx) mapped to [0, 1]
//
// Three kernel families are available: simple (a single row or column of
// inverse distances), prewitt (distances over the full window) and sobol, a
// distance-weighted vector kernel. The kernel window is derived from the
// horizontal and vertical radius settings with KernelSizeFromRadius.
//
// Importing the package registers the plugin under the name "edgedetection";
// filter.LoadPlugins then adds the filter to the host registry.
package edgedetection
