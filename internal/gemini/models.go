package gemini

import "os"

// Gemini Model IDs
//
// | Model Name                  | API Model ID                | Use Case                      |
// |-----------------------------|---------------------------  |-------------------------------|
// | Gemini 3.1 Pro (Preview)    | gemini-3.1-pro-preview      | Best for complex reasoning    |
// | Gemini 3 Flash (Preview)    | gemini-3-flash-preview      | Best for speed + intelligence |
// | Gemini 2.5 Flash            | gemini-2.5-flash            | Stable, balanced performance  |
// | Gemini 3 Pro Image          | gemini-3-pro-image-preview  | Advanced image generation     |
const (
	// ModelGemini31ProPreview is best for complex reasoning (1M context).
	ModelGemini31ProPreview = "gemini-3.1-pro-preview"

	// ModelGemini3FlashPreview is best for speed + intelligence.
	ModelGemini3FlashPreview = "gemini-3-flash-preview"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini3ProImage is for advanced image generation/edit.
	ModelGemini3ProImage = "gemini-3-pro-image-preview"
)

// DefaultTextModel is the default model for JSON-producing calls.
const DefaultTextModel = ModelGemini3FlashPreview

// DefaultImageModel is the default model for sketch rendering.
// Can be overridden via the SKETCH_MODEL environment variable.
const DefaultImageModel = ModelGemini3ProImage

// GetImageModel returns the image generation model to use, resolved from:
// 1. SKETCH_MODEL environment variable (if set)
// 2. Default: gemini-3-pro-image-preview
func GetImageModel() string {
	if env := os.Getenv("SKETCH_MODEL"); env != "" {
		return env
	}
	return DefaultImageModel
}
