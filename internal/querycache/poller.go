package querycache

import (
	"context"
	"time"
)

// Poll runs fn immediately and then on every tick until ctx is cancelled.
// It blocks; run it in a goroutine scoped to the owning view so polling
// stops when the view goes away. Polling deliberately continues while the
// browser tab is unfocused: the agent keeps working server-side.
func Poll(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}

	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
