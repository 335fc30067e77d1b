package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/sketch-render/internal/gemini"
	"github.com/fpang/sketch-render/internal/jobs"
	"github.com/fpang/sketch-render/internal/render"
	"github.com/fpang/sketch-render/internal/sketch"
)

// renderRequest is the POST /api/render body.
type renderRequest struct {
	// Sketch is the base64-encoded sketch, optionally data-URI prefixed.
	Sketch string `json:"sketch"`
	// Instruction is the rendering instruction.
	Instruction string `json:"instruction"`
	// AspectRatio selects the output canvas; defaults to 16:9.
	AspectRatio string `json:"aspectRatio,omitempty"`
	// Model overrides the image model.
	Model string `json:"model,omitempty"`
	// Temperature is the sampling temperature (0-2).
	Temperature float32 `json:"temperature,omitempty"`
	// PreserveQuality skips edge enhancement.
	PreserveQuality bool `json:"preserveQuality,omitempty"`
	// Search grounds the generation with web search.
	Search bool `json:"search,omitempty"`
	// OutputFormat is "png" (default) or "jpeg".
	OutputFormat string `json:"outputFormat,omitempty"`
}

// renderResponse is the success body for POST /api/render.
type renderResponse struct {
	RequestID   string `json:"requestId"`
	Image       string `json:"image"`
	Format      string `json:"format"`
	Commentary  string `json:"commentary,omitempty"`
	SketchType  string `json:"sketchType"`
	DetailLevel string `json:"detailLevel"`
}

func handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Sketch == "" {
		httpError(w, http.StatusBadRequest, "sketch is required")
		return
	}
	if req.Instruction == "" {
		httpError(w, http.StatusBadRequest, "instruction is required")
		return
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "16:9"
	}
	if req.OutputFormat == "" {
		req.OutputFormat = "png"
	}
	model := req.Model
	if model == "" {
		model = modelFlag
	}

	requestID := jobs.GenerateID("render-")
	log.Info().
		Str("request_id", requestID).
		Str("aspect_ratio", req.AspectRatio).
		Str("model", model).
		Msg("Render request accepted")

	result, err := render.Render(r.Context(), client, render.Request{
		SketchBase64:    req.Sketch,
		Instruction:     req.Instruction,
		AspectRatio:     req.AspectRatio,
		ModelID:         model,
		Temperature:     req.Temperature,
		PreserveQuality: req.PreserveQuality,
		EnableSearch:    req.Search,
	})
	if err != nil {
		respondRenderError(w, requestID, err)
		return
	}

	encoded, err := sketch.ToBase64(result.Image, req.OutputFormat)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, renderResponse{
		RequestID:   requestID,
		Image:       encoded,
		Format:      req.OutputFormat,
		Commentary:  result.Commentary,
		SketchType:  string(result.Info.Type),
		DetailLevel: string(result.Info.Detail),
	})
}

// respondRenderError maps pipeline failures onto HTTP statuses: bad input is
// the caller's fault, a model refusal is reported distinctly from transport
// faults so clients can tell "fix your sketch" from "try again later".
func respondRenderError(w http.ResponseWriter, requestID string, err error) {
	var noImage *gemini.NoImageError
	switch {
	case errors.Is(err, render.ErrInvalidSketch):
		log.Warn().Str("request_id", requestID).Msg("Undecodable sketch payload")
		httpError(w, http.StatusBadRequest, "sketch is not a decodable base64 image")
	case errors.As(err, &noImage):
		log.Warn().Str("request_id", requestID).Str("commentary", noImage.Commentary).Msg("Model declined to produce an image")
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":      "the model did not produce an image",
			"commentary": noImage.Commentary,
		})
	default:
		log.Error().Err(err).Str("request_id", requestID).Msg("Rendering failed")
		httpError(w, http.StatusBadGateway, "generation service failed: "+err.Error())
	}
}

func handleRatios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"ratios": sketch.SupportedRatios()})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
