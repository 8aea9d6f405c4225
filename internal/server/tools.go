package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	maskPath := stringProp("Absolute path to the lesion (cyst) mask; nonzero pixels are lesion")
	teethDir := stringProp("Directory containing tooth_<index>_FDI_<code>.png masks. Ignored when teeth is given")
	teeth := map[string]interface{}{
		"type":        "array",
		"description": "Explicit tooth masks. fdi_number wins over class_id (detector class 0-31); missing values are reported as unknown",
		"items": objectSchema(map[string]interface{}{
			"mask_path":  stringProp("Absolute path to the tooth mask"),
			"index":      map[string]interface{}{"type": "integer", "description": "Detector tooth index"},
			"fdi_number": stringProp("Two-digit FDI code"),
			"class_id":   map[string]interface{}{"type": "integer", "description": "Detector class id, mapped to an FDI code"},
		}, "mask_path"),
	}
	imagePath := stringProp("Absolute path to the source radiograph")
	outputPath := stringProp("Optional path to also write the resulting PNG")

	return []Tool{
		// Measurement
		{
			Name:        "cyst_analyze_lesion",
			Description: "Measure every lesion in a mask: area, perimeter, centroid, equivalent diameter and bounding box, in pixels and millimeters.",
			InputSchema: objectSchema(map[string]interface{}{
				"mask_path": maskPath,
			}, "mask_path"),
		},
		{
			Name:        "cyst_score_roots",
			Description: "Score how much of each tooth and its root region the lesion overlaps, with a severity level per tooth.",
			InputSchema: objectSchema(map[string]interface{}{
				"teeth_dir": teethDir,
				"teeth":     teeth,
				"mask_path": maskPath,
			}, "mask_path"),
		},
		{
			Name:        "cyst_report",
			Description: "Produce a plain-text root involvement report: summary, per-tooth details, severity scale and recommendations.",
			InputSchema: objectSchema(map[string]interface{}{
				"teeth_dir": teethDir,
				"teeth":     teeth,
				"mask_path": maskPath,
			}, "mask_path"),
		},

		// Image output
		{
			Name:        "cyst_redact",
			Description: "Remove the lesion from the radiograph and return the result as base64-encoded PNG.",
			InputSchema: objectSchema(map[string]interface{}{
				"image_path": imagePath,
				"mask_path":  maskPath,
				"method": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"interpolation", "blur", "color_fill"},
					"description": "Replacement method. Default from server configuration (interpolation)",
				},
				"fill_color": map[string]interface{}{
					"type":        "string",
					"description": "Hex color for color_fill, e.g. \"#FFFFFF\". Ignored by the other methods",
				},
				"output_path": outputPath,
			}, "image_path", "mask_path"),
		},
		{
			Name:        "cyst_overlay",
			Description: "Outline every tooth colored by lesion overlap severity, label it with FDI code and overlap percentage, and return base64-encoded PNG.",
			InputSchema: objectSchema(map[string]interface{}{
				"teeth_dir":  teethDir,
				"teeth":      teeth,
				"mask_path":  maskPath,
				"image_path": imagePath,
				"legend": map[string]interface{}{
					"type":        "boolean",
					"description": "Append a severity color legend to the right of the image",
				},
				"output_path": outputPath,
			}, "mask_path", "image_path"),
		},

		// Task state
		{
			Name:        "task_status",
			Description: "Look up the state and result of an earlier tool call by its task_id.",
			InputSchema: objectSchema(map[string]interface{}{
				"task_id": stringProp("Task id returned by a cyst_* tool"),
			}, "task_id"),
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
