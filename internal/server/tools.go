package server

import (
	"github.com/ironsheep/imagein/internal/filtering"
	"github.com/ironsheep/imagein/internal/histogram"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type schema map[string]interface{}

func prop(typ, description string) schema {
	return schema{"type": typ, "description": description}
}

func enum(description string, values []string) schema {
	return schema{"type": "string", "enum": values, "description": description}
}

func object(required []string, props schema) map[string]interface{} {
	props["path"] = prop("string", "Absolute path to the image file")
	props["grayscale"] = prop("boolean", "Convert the image to one luminance channel before processing")
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"path"}, required...),
	}
}

var regionSchema = schema{
	"type":        "object",
	"description": "Optional sub-rectangle; defaults to the whole image",
	"properties": schema{
		"x":      prop("integer", "Left edge (0-based)"),
		"y":      prop("integer", "Top edge (0-based)"),
		"width":  prop("integer", "Region width"),
		"height": prop("integer", "Region height"),
	},
	"required": []string{"x", "y", "width", "height"},
}

var outputSchema = prop("string", "Optional file path; the result is also written there in the format its extension names")

var thresholdSchema = prop("integer", "Fixed threshold; samples >= threshold become foreground. Omit for per-channel Otsu")

// ToolDefinitions returns all available tools
func ToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file into the cache and return its dimensions, channel count, bit depth and format.",
			InputSchema: object(nil, schema{}),
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region and return it as base64-encoded PNG.",
			InputSchema: object([]string{"region"}, schema{
				"region": regionSchema,
				"output": outputSchema,
			}),
		},
		{
			Name:        "image_histogram",
			Description: "Count the samples of one channel per value, optionally cumulated, and report mean, standard deviation, min, max and mode.",
			InputSchema: object(nil, schema{
				"channel":   prop("integer", "Channel index. Default 0"),
				"region":    regionSchema,
				"cumulated": prop("boolean", "Return running totals instead of counts"),
			}),
		},
		{
			Name:        "image_projection",
			Description: "Sum sample values per row (horizontal) or per column (vertical) over a region.",
			InputSchema: object(nil, schema{
				"horizontal": prop("boolean", "One value per row instead of one per column"),
				"value":      schema{"type": "integer", "description": "Absolute column (horizontal) or row (vertical) to sample instead of summing, -1 for the full span", "default": histogram.FullSpan},
				"channel":    prop("integer", "Channel index. Default 0"),
				"region":     regionSchema,
			}),
		},
		{
			Name:        "image_otsu",
			Description: "Compute the Otsu threshold of every channel.",
			InputSchema: object(nil, schema{
				"region": regionSchema,
			}),
		},
		{
			Name:        "image_filter",
			Description: "Apply a named convolution filter and return the result as base64-encoded PNG.",
			InputSchema: object([]string{"filter"}, schema{
				"filter":  enum("Filter preset", filtering.PresetNames()),
				"policy":  enum("Boundary policy for samples outside the image. Defaults to the server setting", filtering.PolicyNames()),
				"workers": prop("integer", "Parallel row bands, 0 for one per CPU. Defaults to the server setting"),
				"radius":  prop("integer", "uniform_blur radius"),
				"size":    prop("integer", "gaussian_blur and prewitt kernel size (odd)"),
				"sigma":   prop("number", "gaussian_blur standard deviation"),
				"alpha":   prop("number", "gaussian_blur_alpha smoothing factor"),
				"output":  outputSchema,
			}),
		},
		{
			Name:        "image_morphology",
			Description: "Binarize the image if needed, then apply a morphological operator with a disk, diamond or square element.",
			InputSchema: object([]string{"operation"}, schema{
				"operation": enum("Operator", operationNames()),
				"shape":     enum("Structuring element shape. Default disk", shapeNames),
				"radius":    prop("integer", "Structuring element radius. Default 1"),
				"threshold": thresholdSchema,
				"output":    outputSchema,
			}),
		},
		{
			Name:        "image_binarize",
			Description: "Binarize every channel at a fixed or Otsu threshold; the mask is returned as black and white PNG.",
			InputSchema: object(nil, schema{
				"threshold": thresholdSchema,
				"output":    outputSchema,
			}),
		},
		{
			Name:        "image_invert",
			Description: "Invert every sample against the image's maximum value.",
			InputSchema: object(nil, schema{
				"output": outputSchema,
			}),
		},
		{
			Name:        "image_apply",
			Description: "Run a registered algorithm by name. Algorithms of arity 2 take the second image from 'other'.",
			InputSchema: object([]string{"algorithm"}, schema{
				"algorithm": prop("string", "Algorithm name as listed by image_algorithms"),
				"other":     prop("string", "Absolute path to the second input"),
				"output":    outputSchema,
			}),
		},
		{
			Name:        "image_algorithms",
			Description: "List registered algorithms, filter presets, boundary policies, morphology operators and element shapes.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
