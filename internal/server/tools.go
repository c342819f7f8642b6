package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var regionNames = []string{
	"full", "top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func filterProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Filter id as reported by filter_list, e.g. \"edge detection\"",
	}
}

func rectProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge (inclusive)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge (inclusive)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge (exclusive)"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        regionNames,
		"description": "Named region, used when rect is absent",
	}
}

// configProperties are the arguments shared by tools that take a filter
// configuration.
func configProperties() map[string]interface{} {
	return map[string]interface{}{
		"filter": filterProperty(),
		"preset": map[string]interface{}{
			"type":        "string",
			"description": "Name of a stored preset to start from",
		},
		"config": map[string]interface{}{
			"type":                 "object",
			"description":          "Configuration properties; anything left out keeps the preset or factory value",
			"additionalProperties": map[string]interface{}{"type": []string{"number", "string", "boolean"}},
		},
		"channel_flags": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "boolean"},
			"description": "Channels to write in R, G, B, A order. Default: all",
		},
	}
}

func merge(props ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, p := range props {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangle or named region from an image and return it as base64-encoded PNG. Use this to inspect filter output up close.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"rect":   rectProperty("Region to crop"),
					"region": regionProperty(),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at one or more pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label for this point"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Sample several points instead of x/y",
					},
				},
				"required": []string{"path"},
			},
		},

		// Filters
		{
			Name:        "filter_list",
			Description: "List the available filters with their category and capabilities.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Only list filters of this category, e.g. \"edge_filters\"",
					},
				},
			},
		},
		{
			Name:        "filter_default_config",
			Description: "Get the factory configuration of a filter.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filter": filterProperty(),
				},
				"required": []string{"filter"},
			},
		},
		{
			Name:        "filter_config_widget",
			Description: "Describe the settings form of a filter: fields, ranges, choices and current values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(configProperties(), map[string]interface{}{
					"for_masks": map[string]interface{}{
						"type":        "boolean",
						"description": "Build the form for filtering a mask instead of a paint layer",
						"default":     false,
					},
				}),
				"required": []string{"filter"},
			},
		},
		{
			Name:        "filter_needed_rect",
			Description: "Get the source area a filter reads to produce the given rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(configProperties(), map[string]interface{}{
					"rect": rectProperty("Area to be filtered"),
					"lod":  lodProperty(),
				}),
				"required": []string{"filter", "rect"},
			},
		},
		{
			Name:        "filter_changed_rect",
			Description: "Get the output area whose rendering depends on pixels in the given rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(configProperties(), map[string]interface{}{
					"rect": rectProperty("Area whose pixels changed"),
					"lod":  lodProperty(),
				}),
				"required": []string{"filter", "rect"},
			},
		},
		{
			Name:        "filter_apply",
			Description: "Run a filter over an image and return the result as base64-encoded PNG, optionally saving it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(configProperties(), map[string]interface{}{
					"path":   pathProperty(),
					"rect":   rectProperty("Area to filter. Default: the whole image"),
					"region": regionProperty(),
					"lod":    lodProperty(),
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length for parallel processing; 0 uses the server default, negative disables tiling",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Tiles processed at once; 0 uses the server default",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Save the result here; the format follows the extension",
					},
					"return_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the encoded result in the response",
						"default":     true,
					},
				}),
				"required": []string{"path", "filter"},
			},
		},
		{
			Name:        "filter_presets",
			Description: "List stored filter presets and their configurations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Only list presets of this filter",
					},
				},
			},
		},
	}
}

func lodProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Level of detail; each level halves the resolution. Default 0",
		"minimum":     0,
		"default":     0,
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
