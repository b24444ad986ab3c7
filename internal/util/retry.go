package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to maxAttempts times, sleeping between attempts with a
// doubling delay starting at baseDelay. It stops on the first nil return and
// honors context cancellation while sleeping. When every attempt fails, the
// returned error wraps the last one with the attempt count.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		delay := baseDelay << (attempt - 1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, err)
}
