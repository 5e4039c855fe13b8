package bot

import (
	"context"
	"time"
)

// Pacer delays the loop between requests to keep a human cadence.
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}

// SleepPacer waits on the wall clock.
type SleepPacer struct{}

func (SleepPacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoPause returns at once. Hosts that step agents inside their own tick use
// it so a decision never blocks the host.
type NoPause struct{}

func (NoPause) Pause(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
