// infrastructure/retry.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Retry calls fn up to attempts times, sleeping delay in between. Backing
// services started alongside the gateway are often not ready on the first try.
func Retry(ctx context.Context, logger hclog.Logger, what string, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(ctx); err == nil {
			logger.Info("connected", "service", what)
			return nil
		}
		if i == attempts {
			break
		}
		logger.Warn("connection failed, retrying", "service", what, "attempt", i, "of", attempts, "in", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("could not connect to %s after %d attempts: %w", what, attempts, err)
}
