package github

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_OnlyLastCallRuns(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var ran atomic.Int32
	var last atomic.Value

	for _, q := range []string{"w", "we", "web", "webapp"} {
		query := q
		d.Do(context.Background(), func(ctx context.Context) {
			ran.Add(1)
			last.Store(query)
		})
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := ran.Load(); got != 1 {
		t.Errorf("Expected exactly 1 run, got %d", got)
	}
	if got, _ := last.Load().(string); got != "webapp" {
		t.Errorf("Expected last query to win, got %q", got)
	}
}

func TestDebouncer_NewCallCancelsInFlightRun(t *testing.T) {
	d := NewDebouncer(5 * time.Millisecond)
	defer d.Stop()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	d.Do(context.Background(), func(ctx context.Context) {
		close(started)
		select {
		case <-ctx.Done():
			close(cancelled)
		case <-time.After(2 * time.Second):
		}
	})

	<-started
	d.Do(context.Background(), func(ctx context.Context) {})

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("Expected in-flight run cancelled by newer call")
	}
}

func TestDebouncer_StopPreventsPendingRun(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var ran atomic.Int32
	d.Do(context.Background(), func(ctx context.Context) { ran.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := ran.Load(); got != 0 {
		t.Errorf("Expected no runs after Stop, got %d", got)
	}
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0)
	if d.delay != 300*time.Millisecond {
		t.Errorf("Expected 300ms default, got %v", d.delay)
	}
}
