// Package server implements the MCP (Model Context Protocol) host for image
// filters.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0, one message per
// line. Supported methods are initialize, tools/list, tools/call and ping.
// Logging goes to stderr; stdout carries only protocol messages.
//
// # Tools
//
// Image tools:
//   - image_load: load an image and report its metadata
//   - image_dimensions: width and height
//   - image_crop: crop a rectangle or named region, returned as PNG
//   - image_sample_color: color at one or more pixels
//
// Filter tools operate on the filters registered by the compiled-in plugins:
//   - filter_list: filters with category and capabilities
//   - filter_default_config: factory configuration
//   - filter_config_widget: the settings form with ranges and choices
//   - filter_needed_rect / filter_changed_rect: area of effect queries
//   - filter_apply: run a filter over an image, optionally tiled and at a
//     reduced level of detail
//   - filter_presets: stored configurations
//
// Configurations can be given as a preset name, explicit properties, or
// both; properties override the preset, which overrides the factory values.
//
// # Image Caching
//
// Loaded images are cached by path for the lifetime of the server. Results
// written with filter_apply's output_path are cached under that path, so
// filters can be chained without re-reading the file.
//
// # Error Handling
//
// Tool failures are JSON-RPC errors with code -32602 for bad arguments and
// -32000 for everything else; data carries the Go error string.
package server
