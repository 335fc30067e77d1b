package gemini

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/sketch-render/internal/retry"
	"github.com/fpang/sketch-render/internal/sketch"
)

// imageSize is the output resolution requested from the image model.
const imageSize = "2K"

// ImageRequest describes one image generation call. Constructed fresh per
// call and never mutated after construction.
type ImageRequest struct {
	// Prompt is the text instruction, always the last part of the message.
	Prompt string
	// Source is the optional sketch to transform, sent as an inline PNG.
	Source image.Image
	// Reference is an optional second image (style reference or inpaint
	// mask), sent after the source.
	Reference image.Image
	// ModelID selects the model; empty means DefaultImageModel.
	ModelID string
	// Temperature is the sampling temperature in [0, 2].
	Temperature float32
	// AspectRatio is an optional output ratio label such as "16:9".
	AspectRatio string
	// EnableSearch grounds the generation with web search results.
	EnableSearch bool
}

// ImageResult is a successfully generated image plus any text commentary the
// model produced before the image part.
type ImageResult struct {
	Image      image.Image
	MIMEType   string
	Commentary string
}

// NoImageError reports a stream that completed without yielding a decodable
// image. This usually means the model declined to produce one (safety
// filtering or a malformed multimodal request), not a transport fault, so it
// is not matched by the retry vocabulary.
type NoImageError struct {
	// Commentary is the accumulated text the model returned instead.
	Commentary string
}

func (e *NoImageError) Error() string {
	if e.Commentary == "" {
		return "no image returned in response"
	}
	return fmt.Sprintf("no image returned in response (text: %s)", truncateString(e.Commentary, 200))
}

// RequestImage executes a streamed image generation call under the retry
// policy and returns the first decodable image from the response stream.
func (c *Client) RequestImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if !c.Supports(CapImageGeneration) {
		return nil, ErrCapabilityUnavailable
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = DefaultImageModel
	}

	contents, err := buildImageContents(req)
	if err != nil {
		return nil, err
	}
	config := buildImageConfig(req)

	startTime := time.Now()
	log.Info().
		Str("model", modelID).
		Bool("has_source", req.Source != nil).
		Bool("has_reference", req.Reference != nil).
		Str("aspect_ratio", req.AspectRatio).
		Float32("temperature", req.Temperature).
		Msg("Sending image generation request to Gemini")

	result, err := retry.Do(ctx, c.policy, "image generation", func(ctx context.Context) (*ImageResult, error) {
		stream := c.genai.Models.GenerateContentStream(ctx, modelID, contents, config)
		return consumeImageStream(stream)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("model", modelID).
		Str("output_mime", result.MIMEType).
		Int("commentary_length", len(result.Commentary)).
		Dur("duration", time.Since(startTime)).
		Msg("Image generation complete")

	return result, nil
}

// inpaintTemplate explains the mask convention to the model. The mask rides
// in the reference image slot.
const inpaintTemplate = `You are given a source image followed by a binary mask image of the same dimensions.
White pixels in the mask mark the region to edit. Black pixels mark content that must be preserved exactly as it appears in the source image.

Apply the following instruction only within the white mask region:

%s`

// GenerateWithInpaint performs a masked edit: the mask is passed as the
// reference image and the prompt is wrapped with the mask convention. White
// mask pixels are editable, black pixels are preserved.
func (c *Client) GenerateWithInpaint(ctx context.Context, source, mask image.Image, prompt string, req ImageRequest) (*ImageResult, error) {
	req.Prompt = fmt.Sprintf(inpaintTemplate, prompt)
	req.Source = source
	req.Reference = mask
	return c.RequestImage(ctx, req)
}

// buildImageContents assembles the single user message: optional source
// image, optional reference image, then the text prompt, in that order.
func buildImageContents(req ImageRequest) ([]*genai.Content, error) {
	var parts []*genai.Part

	for _, img := range []struct {
		name  string
		image image.Image
	}{
		{"source", req.Source},
		{"reference", req.Reference},
	} {
		if img.image == nil {
			continue
		}
		data, err := sketch.EncodePNG(img.image)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s image: %w", img.name, err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: data},
		})
	}

	parts = append(parts, &genai.Part{Text: req.Prompt})

	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, nil
}

func buildImageConfig(req ImageRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(req.Temperature),
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{ImageSize: imageSize},
	}
	if req.AspectRatio != "" {
		config.ImageConfig.AspectRatio = req.AspectRatio
	}
	if req.EnableSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return config
}

// consumeImageStream pulls response chunks until the first decodable inline
// image. Text parts seen before the image accumulate as commentary. Chunks
// whose inline data fails to decode are logged and skipped; exhaustion
// without any image yields NoImageError, a transport error during iteration
// propagates as-is.
func consumeImageStream(stream iter.Seq2[*genai.GenerateContentResponse, error]) (*ImageResult, error) {
	var commentary strings.Builder
	chunkCount := 0

	for resp, err := range stream {
		if err != nil {
			return nil, fmt.Errorf("stream failed: %w", err)
		}
		chunkCount++

		if resp == nil || len(resp.Candidates) == 0 {
			continue
		}
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil {
					continue
				}
				if part.Text != "" {
					commentary.WriteString(part.Text)
				}
				if part.InlineData == nil || len(part.InlineData.Data) == 0 {
					continue
				}

				img, _, err := image.Decode(bytes.NewReader(part.InlineData.Data))
				if err != nil {
					log.Warn().
						Err(err).
						Int("chunk", chunkCount).
						Int("bytes", len(part.InlineData.Data)).
						Str("mime", part.InlineData.MIMEType).
						Msg("Failed to decode inline image data, skipping chunk")
					continue
				}

				log.Debug().
					Int("chunk", chunkCount).
					Int("bytes", len(part.InlineData.Data)).
					Str("mime", part.InlineData.MIMEType).
					Msg("Decoded image from stream")

				return &ImageResult{
					Image:      img,
					MIMEType:   part.InlineData.MIMEType,
					Commentary: commentary.String(),
				}, nil
			}
		}
	}

	log.Warn().
		Int("chunks", chunkCount).
		Int("commentary_length", commentary.Len()).
		Msg("Stream exhausted without a decodable image")

	return nil, &NoImageError{Commentary: commentary.String()}
}
