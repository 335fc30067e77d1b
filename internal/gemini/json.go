package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/sketch-render/internal/jsonutil"
	"github.com/fpang/sketch-render/internal/retry"
)

// RequestJSON issues a single-shot generation call forced to JSON output and
// parses the response into T. The whole attempt, network call and parse, runs
// inside the retry wrapper: a transport error matching the retry vocabulary
// reissues the call, while a malformed payload fails the attempt without
// matching and so propagates immediately.
func RequestJSON[T any](ctx context.Context, c *Client, parts []*genai.Part, modelID string, temperature float32) (T, error) {
	var zero T
	if !c.Supports(CapTextGeneration) {
		return zero, ErrCapabilityUnavailable
	}
	if modelID == "" {
		modelID = DefaultTextModel
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
	}

	startTime := time.Now()
	log.Debug().
		Str("model", modelID).
		Int("parts", len(parts)).
		Float32("temperature", temperature).
		Msg("Sending JSON generation request to Gemini")

	result, err := retry.Do(ctx, c.policy, "json generation", func(ctx context.Context) (T, error) {
		resp, err := c.genai.Models.GenerateContent(ctx, modelID, contents, config)
		if err != nil {
			return zero, fmt.Errorf("failed to generate content: %w", err)
		}

		text := resp.Text()
		if text == "" {
			return zero, fmt.Errorf("received empty response from Gemini API")
		}

		return jsonutil.ParseJSON[T](text)
	})
	if err != nil {
		return zero, err
	}

	log.Debug().
		Str("model", modelID).
		Dur("duration", time.Since(startTime)).
		Msg("JSON generation complete")

	return result, nil
}
