// Package retry implements the exponential-backoff retry policy used for
// Gemini API calls.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// retryableFragments are matched case-insensitively against an error's text
// to decide whether the failure is worth retrying. The vocabulary is tied to
// how the Gemini API phrases transient failures today; it is isolated here so
// it can be swapped for structured error codes without touching the loop.
var retryableFragments = []string{
	"rate limit",
	"quota",
	"timeout",
	"connection",
	"temporarily unavailable",
	"429",
	"500",
	"503",
}

// DefaultMaxAttempts is the attempt budget used when a Policy is
// zero-valued.
const DefaultMaxAttempts = 3

// Policy decides whether a failed attempt should be retried and how long to
// wait before the next one. The zero value retries up to DefaultMaxAttempts.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first call.
	// Values <= 1 mean the first failure is terminal.
	MaxAttempts int
}

func (p Policy) maxAttempts() int {
	switch {
	case p.MaxAttempts == 0:
		return DefaultMaxAttempts
	case p.MaxAttempts < 0:
		// A budget below one still means one terminal attempt; Do must
		// never skip the operation and report success.
		return 1
	default:
		return p.MaxAttempts
	}
}

// Retryable reports whether the error's text matches the transient-failure
// vocabulary. A nil error is never retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// ShouldRetry reports whether a failure on the given zero-indexed attempt
// should be retried. The last allowed attempt is never retried, even for a
// matching error.
func (p Policy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.maxAttempts()-1 {
		return false
	}
	return Retryable(err)
}

// Wait returns the backoff duration before re-running the given zero-indexed
// attempt: 2^attempt seconds (1s, 2s, 4s, ...).
func Wait(attempt int) time.Duration {
	return (1 << attempt) * time.Second
}

// Do runs op under the policy. Each attempt invokes op from the top, so any
// parsing or decoding that belongs to the attempt must live inside op. On a
// retryable failure Do sleeps for Wait(attempt) and tries again; the final
// failure is returned verbatim. Non-retryable errors propagate immediately
// without consuming the remaining budget.
func Do[T any](ctx context.Context, p Policy, label string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	max := p.maxAttempts()
	for attempt := 0; attempt < max; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info().Str("op", label).Int("attempt", attempt+1).Msg("Retry succeeded")
			}
			return result, nil
		}
		lastErr = err

		if !p.ShouldRetry(err, attempt) {
			return zero, err
		}

		delay := Wait(attempt)
		log.Warn().
			Err(err).
			Str("op", label).
			Int("attempt", attempt+1).
			Int("max_attempts", max).
			Dur("backoff", delay).
			Msg("Transient API error, backing off before retry")

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
