package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session id returned by editor_open",
	}
}

// sessionSchema builds an object schema whose first required property is
// session_id.
func sessionSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	all := map[string]interface{}{"session_id": sessionIDProperty()}
	for k, v := range props {
		all[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": all,
		"required":   append([]string{"session_id"}, required...),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session Lifecycle
		{
			Name: "editor_open",
			Description: "Open an editing session on a photo. Pass either a file path or http(s) URL in source, " +
				"or the encoded bytes in data_base64. The original is never modified; edits are kept as parameters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Absolute file path or http(s) URL of the photo",
					},
					"data_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes (JPEG, PNG, GIF, WebP, BMP or TIFF)",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Display name for inline data",
					},
					"original_ref": map[string]interface{}{
						"type":        "string",
						"description": "Reference to the full-resolution original, echoed on export",
					},
				},
			},
		},
		{
			Name:        "editor_state",
			Description: "Get the current edit state: adjustments that differ from default, effective values, preset, crop, zoom and output size.",
			InputSchema: sessionSchema(map[string]interface{}{
				"include_recipe": map[string]interface{}{
					"type":        "boolean",
					"description": "Also return the edit as a reusable recipe",
					"default":     false,
				},
			}),
		},
		{
			Name:        "editor_reset",
			Description: "Restore every adjustment to default, clear the preset, reset the crop to the full frame and zoom to 100%.",
			InputSchema: sessionSchema(nil),
		},
		{
			Name:        "editor_close",
			Description: "Discard an editing session.",
			InputSchema: sessionSchema(nil),
		},

		// Adjustments and Presets
		{
			Name: "editor_adjust",
			Description: "Set one or more manual adjustments. Values are clamped to each field's range. " +
				"Fields: brightness, contrast, saturation, vibrance, highlights, shadows, clarity, redChannel, " +
				"greenChannel, blueChannel, exposure, temperature, tint (-100..100), gamma (0.2..5, default 1), sharpen (0..100).",
			InputSchema: sessionSchema(map[string]interface{}{
				"adjustments": map[string]interface{}{
					"type":                 "object",
					"description":          "Map of field name to value, e.g. {\"contrast\": 20}",
					"additionalProperties": map[string]interface{}{"type": "number"},
				},
			}, "adjustments"),
		},
		{
			Name:        "editor_preset",
			Description: "Toggle a preset look. Selecting the active preset deselects it. Manual adjustments stack on top of the preset.",
			InputSchema: sessionSchema(map[string]interface{}{
				"preset_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset id from presets_list, e.g. warm-golden",
				},
			}, "preset_id"),
		},
		{
			Name:        "editor_preset_intensity",
			Description: "Set how strongly the selected preset applies, from 0 to 100.",
			InputSchema: sessionSchema(map[string]interface{}{
				"intensity": map[string]interface{}{
					"type":        "number",
					"description": "Preset strength (0-100)",
					"minimum":     0,
					"maximum":     100,
				},
			}, "intensity"),
		},
		{
			Name:        "presets_list",
			Description: "List the built-in preset looks with their overrides and swatch colors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Only list one category",
						"enum":        []string{"Vivid", "Warm", "Cool", "B&W", "Cinematic", "Matte"},
					},
				},
			},
		},

		// Geometry
		{
			Name:        "editor_rotate",
			Description: "Rotate the photo by quarter turns.",
			InputSchema: sessionSchema(map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Rotation direction",
					"enum":        []string{"cw", "ccw"},
					"default":     "cw",
				},
				"steps": map[string]interface{}{
					"type":        "integer",
					"description": "Number of 90 degree steps",
					"default":     1,
				},
			}),
		},
		{
			Name:        "editor_fine_rotate",
			Description: "Set the straightening angle in degrees, clamped to -45..45. Composes with quarter turns.",
			InputSchema: sessionSchema(map[string]interface{}{
				"degrees": map[string]interface{}{
					"type":        "number",
					"description": "Angle in degrees, positive is clockwise",
				},
			}, "degrees"),
		},
		{
			Name:        "editor_flip",
			Description: "Mirror the photo. Flipping twice on the same axis restores it.",
			InputSchema: sessionSchema(map[string]interface{}{
				"axis": map[string]interface{}{
					"type":        "string",
					"description": "Mirror axis",
					"enum":        []string{"horizontal", "vertical"},
				},
			}, "axis"),
		},
		{
			Name:        "editor_aspect_ratio",
			Description: "Lock the crop box to an aspect ratio. The box is refit and centered.",
			InputSchema: sessionSchema(map[string]interface{}{
				"ratio": map[string]interface{}{
					"type":        "string",
					"description": "Aspect ratio name",
					"enum":        []string{"free", "1:1", "4:3", "3:4", "16:9", "9:16"},
				},
			}, "ratio"),
		},
		{
			Name: "editor_crop_pointer",
			Description: "Drive the interactive crop box with pointer events in percent-of-frame coordinates. " +
				"down inside the box starts a drag, down on a corner handle starts a resize, move updates, up ends. " +
				"control_down captures the pointer for the editing controls so the box ignores it.",
			InputSchema: sessionSchema(map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "string",
					"description": "Pointer event",
					"enum":        []string{"down", "move", "up", "control_down"},
				},
				"x": map[string]interface{}{
					"type":        "number",
					"description": "Pointer X in percent of frame width (0-100)",
				},
				"y": map[string]interface{}{
					"type":        "number",
					"description": "Pointer Y in percent of frame height (0-100)",
				},
			}, "action"),
		},
		{
			Name:        "editor_zoom",
			Description: "Set the preview zoom (0.5 to 3.0 in 0.1 steps). Zoom never changes rendered pixels.",
			InputSchema: sessionSchema(map[string]interface{}{
				"zoom": map[string]interface{}{
					"type":        "number",
					"description": "Absolute zoom factor",
				},
				"steps": map[string]interface{}{
					"type":        "integer",
					"description": "Relative change in 0.1 steps when zoom is omitted",
				},
			}),
		},

		// Rendering
		{
			Name:        "editor_preview",
			Description: "Render the current edit on the downsampled preview buffer and return it as a base64 image.",
			InputSchema: sessionSchema(map[string]interface{}{
				"apply_crop": map[string]interface{}{
					"type":        "boolean",
					"description": "Apply crop, rotation and flips. When false the full frame is returned.",
					"default":     true,
				},
				"overlay": map[string]interface{}{
					"type":        "boolean",
					"description": "Return the full frame with the crop box, thirds guides and handles drawn over it",
					"default":     false,
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "Encoding of the returned image",
					"enum":        []string{"png", "jpeg", "webp"},
					"default":     "png",
				},
				"quality": map[string]interface{}{
					"type":        "number",
					"description": "Lossy quality (0-1)",
				},
			}),
		},
		{
			Name: "editor_export",
			Description: "Render the edit at full resolution (longest side at most the configured maximum) and encode it. " +
				"WebP is preferred and JPEG is used when WebP encoding is unavailable.",
			InputSchema: sessionSchema(nil),
		},
		{
			Name:        "editor_sample_color",
			Description: "Read the color at a point of the uncropped frame before and after the current adjustments, e.g. to check a neutral grey.",
			InputSchema: sessionSchema(map[string]interface{}{
				"x": map[string]interface{}{
					"type":        "number",
					"description": "X in percent of frame width (0-100)",
				},
				"y": map[string]interface{}{
					"type":        "number",
					"description": "Y in percent of frame height (0-100)",
				},
				"radius": map[string]interface{}{
					"type":        "integer",
					"description": "Average a square of this many pixels around the point (0-25)",
					"default":     0,
				},
			}, "x", "y"),
		},
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
