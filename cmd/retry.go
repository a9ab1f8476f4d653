package cmd

import (
	"context"
	"fmt"
	"time"

	errs "nightlife-navigator/pkg/errors"
	"nightlife-navigator/pkg/logging"
)

// withRetry runs fn up to attempts times with quadratic backoff. Validation
// errors are returned at once since retrying cannot fix them.
func withRetry(ctx context.Context, log *logging.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		if errs.IsValidation(err) {
			return err
		}
		lastErr = err
		log.Warn("retryable operation failed",
			logging.String("operation", name),
			logging.Int("attempt", attempt),
			logging.String("error", err.Error()),
		)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
