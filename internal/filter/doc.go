// Package filter defines the contracts between the image host and its filter
// plugins, and the host-side pipeline that drives them.
//
// A filter is identified by a stable ID, processes a rectangle of a paint
// device under a Configuration, and answers two geometry queries used for
// partial and tiled processing:
//
//   - NeededRect: the area the filter reads to produce a given rectangle.
//   - ChangedRect: the area the filter may modify when asked to process a
//     given rectangle.
//
// Plugins register a factory with RegisterPlugin, usually from an init
// function. The host creates a Registry and calls LoadPlugins, which hands the
// registry (the owner) and the host's argument list to every factory. Each
// plugin adds its filters to the owner.
//
// # Configuration
//
// A Configuration is a named, versioned bag of properties. Filters read it
// through typed getters that fall back to a default, so partial
// configurations coming from presets or remote callers are always usable.
// Configurations round-trip through YAML and JSON.
//
// # Level of Detail
//
// The host may run filters on a downscaled preview. The lod argument of the
// geometry queries (and the "lod" property read by Apply) is the number of
// halvings; LodTransform scales distances accordingly.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Filters are expected to be stateless
// and callable concurrently on disjoint device regions, which ApplyTiled
// relies on.
package filter
