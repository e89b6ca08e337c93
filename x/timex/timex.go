package timex

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx is done, whichever comes first.
// It returns ctx.Err() if the wait was cut short.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
