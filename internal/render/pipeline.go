// Package render orchestrates the sketch-to-image pipeline: decode, analyze,
// normalize, prompt, generate.
package render

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/sketch-render/internal/gemini"
	"github.com/fpang/sketch-render/internal/sketch"
)

// ErrInvalidSketch is returned when the sketch payload does not decode to an
// image. This is the caller's input, not a service fault.
var ErrInvalidSketch = errors.New("sketch payload is not a decodable image")

// ImageGenerator is the generation surface the pipeline needs. Satisfied by
// *gemini.Client.
type ImageGenerator interface {
	RequestImage(ctx context.Context, req gemini.ImageRequest) (*gemini.ImageResult, error)
}

// Request carries one rendering job through the pipeline.
type Request struct {
	// SketchBase64 is the sketch payload, optionally data-URI prefixed.
	SketchBase64 string
	// Instruction is the user's rendering instruction.
	Instruction string
	// AspectRatio selects the output canvas ("16:9" etc.); unknown values
	// fall back to the default canvas.
	AspectRatio string
	// ModelID overrides the image model; empty uses the default.
	ModelID string
	// Temperature is the sampling temperature in [0, 2].
	Temperature float32
	// PreserveQuality skips edge enhancement and allows the direct
	// resample fast path for near-target inputs.
	PreserveQuality bool
	// EnableSearch grounds the generation with web search.
	EnableSearch bool
}

// Result is a completed rendering.
type Result struct {
	// Image is the generated raster.
	Image image.Image
	// MIMEType is the service's declared type for the generated bytes.
	MIMEType string
	// Commentary is any text the model produced alongside the image.
	Commentary string
	// Info is the sketch classification that shaped the prompt.
	Info sketch.Info
}

// Render runs one sketch through the full pipeline. Each call owns its own
// state end to end; nothing persists across invocations.
func Render(ctx context.Context, gen ImageGenerator, req Request) (*Result, error) {
	startTime := time.Now()

	src, ok := sketch.DecodeBase64(req.SketchBase64)
	if !ok {
		return nil, ErrInvalidSketch
	}

	info := sketch.Analyze(src.Image)
	normalized := sketch.Preprocess(src.Image, req.AspectRatio, &info, req.PreserveQuality)
	prompt := BuildPrompt(req.Instruction, info, src.Capture)

	log.Info().
		Str("sketch_type", string(info.Type)).
		Str("detail_level", string(info.Detail)).
		Str("aspect_ratio", req.AspectRatio).
		Bool("preserve_quality", req.PreserveQuality).
		Int("prompt_length", len(prompt)).
		Msg("Sketch prepared, requesting generation")

	generated, err := gen.RequestImage(ctx, gemini.ImageRequest{
		Prompt:       prompt,
		Source:       normalized,
		ModelID:      req.ModelID,
		Temperature:  req.Temperature,
		AspectRatio:  req.AspectRatio,
		EnableSearch: req.EnableSearch,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Sketch rendering complete")

	return &Result{
		Image:      generated.Image,
		MIMEType:   generated.MIMEType,
		Commentary: generated.Commentary,
		Info:       info,
	}, nil
}
