package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/sketch-render/internal/auth"
	"github.com/fpang/sketch-render/internal/gemini"
	"github.com/fpang/sketch-render/internal/logging"
	"github.com/fpang/sketch-render/internal/render"
	"github.com/fpang/sketch-render/internal/sketch"
)

// CLI flags
var (
	sketchFlag          string
	instructionFlag     string
	ratioFlag           string
	modelFlag           string
	temperatureFlag     float32
	preserveQualityFlag bool
	searchFlag          bool
	outputFlag          string
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "sketch-cli",
	Short: "AI-powered sketch rendering",
	Long: `Sketch CLI takes a hand-drawn sketch and a text instruction and renders
a finished image with Gemini.

The sketch is analyzed (line work, shading, detail density), normalized onto
a white canvas at the requested aspect ratio, and sent to the image model
together with the instruction. Transient service failures are retried with
exponential backoff.

Examples:
  sketch-cli --sketch house.png --instruction "a cozy cottage at sunset"
  sketch-cli -s portrait.jpg -i "oil painting style" --ratio 3:4
  sketch-cli -s scene.png -i "cyberpunk city" --ratio 21:9 -o city.png
  sketch-cli -s logo.png -i "flat vector logo" --preserve-quality`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&sketchFlag, "sketch", "s", "", "Path to the sketch image (required)")
	rootCmd.Flags().StringVarP(&instructionFlag, "instruction", "i", "", "Rendering instruction (required)")
	rootCmd.Flags().StringVarP(&ratioFlag, "ratio", "r", "16:9",
		fmt.Sprintf("Output aspect ratio (%s)", strings.Join(sketch.SupportedRatios(), ", ")))
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", gemini.GetImageModel(), "Gemini image model to use")
	rootCmd.Flags().Float32VarP(&temperatureFlag, "temperature", "t", 1.0, "Sampling temperature (0-2)")
	rootCmd.Flags().BoolVar(&preserveQualityFlag, "preserve-quality", false, "Skip edge enhancement and resample directly when close to target size")
	rootCmd.Flags().BoolVar(&searchFlag, "search", false, "Ground the generation with web search")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "rendered.png", "Output file path")

	rootCmd.MarkFlagRequired("sketch")
	rootCmd.MarkFlagRequired("instruction")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	data, err := os.ReadFile(sketchFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", sketchFlag).Msg("Failed to read sketch file")
	}

	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to retrieve API key")
	}

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}

	if err := auth.ValidateAPIKey(ctx, client.SDK(), gemini.DefaultTextModel); err != nil {
		handleValidationError(err)
	}
	log.Info().Msg("API key validation complete - ready for rendering")

	result, err := render.Render(ctx, client, render.Request{
		SketchBase64:    base64.StdEncoding.EncodeToString(data),
		Instruction:     instructionFlag,
		AspectRatio:     ratioFlag,
		ModelID:         modelFlag,
		Temperature:     temperatureFlag,
		PreserveQuality: preserveQualityFlag,
		EnableSearch:    searchFlag,
	})
	if err != nil {
		var noImage *gemini.NoImageError
		if errors.As(err, &noImage) {
			log.Fatal().Str("commentary", noImage.Commentary).Msg("Model declined to produce an image")
		}
		if errors.Is(err, render.ErrInvalidSketch) {
			log.Fatal().Str("path", sketchFlag).Msg("Sketch file is not a decodable image")
		}
		log.Fatal().Err(err).Msg("Rendering failed")
	}

	out, err := sketch.EncodePNG(result.Image)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode rendered image")
	}
	if err := os.WriteFile(outputFlag, out, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", outputFlag).Msg("Failed to write output file")
	}

	log.Info().
		Str("output", outputFlag).
		Str("sketch_type", string(result.Info.Type)).
		Str("detail_level", string(result.Info.Detail)).
		Msg("Rendered image written")

	if result.Commentary != "" {
		fmt.Println(result.Commentary)
	}
}

// handleValidationError processes auth.ValidationError and exits with appropriate messaging.
func handleValidationError(err error) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeNoKey:
			log.Fatal().Msg("No API key configured. Set GEMINI_API_KEY or create ~/.sketch-render/credentials")
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	os.Exit(1)
}
