package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ValidationError represents a specific type of API key validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeNoKey indicates no API key was found.
	ErrTypeNoKey ValidationErrorType = iota
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey
	// ErrTypeNetworkError indicates a network connectivity issue.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the API quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unknown error occurred.
	ErrTypeUnknown
)

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateAPIKey verifies that the API key is valid by making a minimal API call.
// It returns nil if the key is valid, or a ValidationError with a specific type
// indicating the nature of the failure.
func ValidateAPIKey(ctx context.Context, client *genai.Client, modelID string) error {
	log.Debug().Str("model", modelID).Msg("Validating API key with Gemini API")

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, modelID, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	if err != nil {
		return classify(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("API key validation returned empty response")
		return &ValidationError{
			Type:    ErrTypeUnknown,
			Message: "API returned empty response",
		}
	}

	log.Debug().Dur("duration", elapsed).Msg("API key validated successfully")
	return nil
}

// classify maps a validation failure onto the error types the CLI reports.
// Structured API errors are categorized by HTTP status; everything else
// falls back to message matching.
func classify(err error) *ValidationError {
	errType := ErrTypeUnknown
	msg := "Failed to validate API key"

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			errType, msg = ErrTypeQuotaExceeded, "API rate limit exceeded - try again later"
		case apiErr.Code == 400 || apiErr.Code == 401 || apiErr.Code == 403:
			errType, msg = ErrTypeInvalidKey, "API key is invalid, expired, or lacks permissions"
		case apiErr.Code >= 500:
			errType, msg = ErrTypeNetworkError, "Gemini API server error - try again later"
		case apiErr.Message != "":
			msg = apiErr.Message
		}
		log.Error().Int("code", apiErr.Code).Msg("API key validation failed")
		return &ValidationError{Type: errType, Message: msg, Err: err}
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case containsAny(errLower, "api key not valid", "invalid api key", "api_key_invalid", "permission denied"):
		errType, msg = ErrTypeInvalidKey, "API key is invalid or has been revoked"
	case containsAny(errLower, "quota", "resource exhausted", "rate limit"):
		errType, msg = ErrTypeQuotaExceeded, "API quota exceeded or rate limited"
	case containsAny(errLower, "connection", "network", "timeout", "dial", "no such host", "unreachable"):
		errType, msg = ErrTypeNetworkError, "Network error - check your internet connection"
	}
	log.Error().Err(err).Msg("API key validation failed")
	return &ValidationError{Type: errType, Message: msg, Err: err}
}

func containsAny(s string, fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
