package gemini

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/sketch-render/internal/retry"
)

// Capability describes which generation surfaces a client configuration
// supports. A degraded configuration may support one or neither; callers
// check Supports before invoking rather than probing for nil handles.
type Capability uint8

const (
	// CapTextGeneration covers single-shot JSON-producing calls.
	CapTextGeneration Capability = 1 << iota
	// CapImageGeneration covers streamed image generation calls.
	CapImageGeneration
)

// ErrCapabilityUnavailable is returned when an operation is invoked on a
// client configured without the required capability.
var ErrCapabilityUnavailable = fmt.Errorf("client does not support the requested capability")

// Client wraps the Gemini SDK with the retry policy and capability model
// used by the rendering pipeline. Safe for concurrent use; all fields are
// read-only after construction.
type Client struct {
	genai  *genai.Client
	policy retry.Policy
	caps   Capability
}

// NewClient creates a client supporting both text and image generation.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	return NewClientWithCapabilities(ctx, apiKey, CapTextGeneration|CapImageGeneration)
}

// NewClientWithCapabilities creates a client restricted to the given
// capability set.
func NewClientWithCapabilities(ctx context.Context, apiKey string, caps Capability) (*Client, error) {
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	log.Debug().
		Bool("text", caps&CapTextGeneration != 0).
		Bool("image", caps&CapImageGeneration != 0).
		Msg("Gemini client initialized")

	return &Client{
		genai:  sdk,
		policy: retry.Policy{MaxAttempts: retry.DefaultMaxAttempts},
		caps:   caps,
	}, nil
}

// SDK exposes the underlying SDK client for validation calls.
func (c *Client) SDK() *genai.Client {
	return c.genai
}

// Capabilities returns the client's capability set.
func (c *Client) Capabilities() Capability {
	return c.caps
}

// Supports reports whether every capability in want is available.
func (c *Client) Supports(want Capability) bool {
	return c.caps&want == want
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
