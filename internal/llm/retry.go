// Package llm holds the provider-agnostic pieces of the LLM integration:
// prompts and the bounded retry policy shared by the remote clients.
package llm

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidMaxAttempts is returned when a retry policy is misconfigured.
var ErrInvalidMaxAttempts = errors.New("retry max attempts must be positive")

// RetryWithBackoff runs op up to maxAttempts times, sleeping with exponential
// backoff between attempts. The delay starts at minDelay, doubles per attempt,
// and is capped at maxDelay. The error of the final attempt is returned on
// exhaustion; callers never see a silent empty result.
func RetryWithBackoff(ctx context.Context, op func() error, maxAttempts int, minDelay, maxDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	delay := minDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return lastErr
}
