package github

import (
	"context"
	"sync"
	"time"
)

// Debouncer serializes search-as-you-type: a call scheduled within the
// delay window replaces the previous one, and starting a new run cancels
// the context of any run still in flight, so a stale response can never
// overwrite a fresher one.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewDebouncer creates a debouncer. A non-positive delay defaults to
// 300ms, the interactive-search sweet spot.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer{delay: delay}
}

// Do schedules fn to run after the delay, replacing any pending call and
// cancelling any in-flight one. The context passed to fn is cancelled
// when a newer call supersedes it or when Stop is called.
func (d *Debouncer) Do(ctx context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		defer cancel()
		if runCtx.Err() != nil {
			return
		}
		fn(runCtx)
	})
}

// Stop cancels any pending or in-flight call. Used when the search UI
// closes.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
