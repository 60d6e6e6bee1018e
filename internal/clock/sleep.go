// Package clock holds small time helpers shared by the background services.
package clock

import (
	"context"
	"time"
)

// SleepWithContext pauses for d, or returns the context error as soon as ctx
// is canceled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
