package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRead_MissFetchesInline(t *testing.T) {
	s := NewStore()
	key := ListKey("sessions", "list")

	var calls int32
	v, err := Read(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "fetched", nil
	})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v != "fetched" || atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected one inline fetch, got %q after %d calls", v, calls)
	}

	e, _ := s.Lookup(key)
	if e.Status != StatusSuccess {
		t.Errorf("Expected success entry, got %+v", e)
	}
}

func TestRead_FreshHitSkipsFetch(t *testing.T) {
	s := NewStore()
	key := ListKey("sessions", "list")
	s.Set(key, "cached")

	v, err := Read(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
		t.Error("Fetch should not run on a fresh hit")
		return "", nil
	})
	if err != nil || v != "cached" {
		t.Errorf("Expected cached value, got %q, %v", v, err)
	}
}

func TestRead_StaleServesCachedAndRevalidates(t *testing.T) {
	s := NewStore()
	key := ListKey("sessions", "list")
	s.Set(key, "old")
	s.Invalidate(key)

	fetched := make(chan struct{})
	v, err := Read(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
		close(fetched)
		return "new", nil
	})
	if err != nil || v != "old" {
		t.Errorf("Expected stale value served immediately, got %q, %v", v, err)
	}

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected background revalidation to run")
	}

	// The background Set may land just after the fetch returns.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if v, _ := Value[string](s, key); v == "new" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected revalidated value in cache")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRead_ErrorEntryReturnsValueAndError(t *testing.T) {
	s := NewStore()
	key := ListKey("sessions", "list")
	s.Set(key, "good")
	s.SetError(key, errors.New("backend down"))

	v, err := Read(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
		return "recovered", nil
	})
	if v != "good" {
		t.Errorf("Expected last-known-good value, got %q", v)
	}
	if err == nil {
		t.Error("Expected the stored error returned alongside the value")
	}
}

func TestRead_ErrorEntryRecoversOnLaterRead(t *testing.T) {
	s := NewStore()
	key := ItemKey("sessions", "detail", "s1")
	s.Set(key, "good")
	s.SetError(key, errors.New("transient backend failure"))

	fetched := make(chan struct{})
	_, _ = Read(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
		close(fetched)
		return "recovered", nil
	})

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a retry fetch after the error entry is read")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if e, ok := s.Lookup(key); ok && e.Status == StatusSuccess && e.Value == "recovered" {
			break
		}
		if time.Now().After(deadline) {
			e, _ := s.Lookup(key)
			t.Fatalf("Expected recovery to success, got %+v", e)
		}
		time.Sleep(5 * time.Millisecond)
	}

	v, err := Read(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
		t.Error("Fetch should not run after recovery")
		return "", nil
	})
	if err != nil || v != "recovered" {
		t.Errorf("Expected recovered value with no error, got %q, %v", v, err)
	}
}

func TestRead_ConcurrentStaleReadsFetchOnce(t *testing.T) {
	s := NewStore()
	key := ListKey("sessions", "list")
	s.Set(key, "old")
	s.Invalidate(key)

	var calls int32
	gate := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "new", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Read(context.Background(), s, key, time.Minute, fetch)
			if err != nil || v != "old" {
				t.Errorf("Expected stale value served, got %q, %v", v, err)
			}
		}()
	}
	wg.Wait()
	close(gate)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if v, _ := Value[string](s, key); v == "new" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected revalidated value in cache")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly one backend fetch for concurrent stale reads, got %d", got)
	}
}

func TestRead_FetchErrorRecorded(t *testing.T) {
	s := NewStore()
	key := ListKey("sessions", "list")

	boom := errors.New("boom")
	_, err := Read(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected fetch error surfaced, got %v", err)
	}

	e, _ := s.Lookup(key)
	if e.Status != StatusError || !errors.Is(e.Err, boom) {
		t.Errorf("Expected error entry, got %+v", e)
	}
}

func TestRead_ZeroTTLNeverExpiresByAge(t *testing.T) {
	s := NewStore()
	key := ListKey("messages", "list")
	s.mu.Lock()
	s.entries[key] = Entry{Status: StatusSuccess, Value: "ancient", FetchedAt: time.Now().Add(-24 * time.Hour)}
	s.mu.Unlock()

	v, err := Read(context.Background(), s, key, 0, func(ctx context.Context) (string, error) {
		t.Error("Fetch should not run with ttl 0 and no invalidation")
		return "", nil
	})
	if err != nil || v != "ancient" {
		t.Errorf("Expected aged value still fresh, got %q, %v", v, err)
	}
}

func TestRevalidate_ReplacesValue(t *testing.T) {
	s := NewStore()
	key := ListKey("sessions", "list")
	s.Set(key, "old")
	s.Invalidate(key)

	Revalidate(context.Background(), s, key, func(ctx context.Context) (string, error) {
		return "new", nil
	})

	e, _ := s.Lookup(key)
	if e.Value != "new" || e.Stale {
		t.Errorf("Expected fresh replaced value, got %+v", e)
	}
}

func TestPoll_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	go func() {
		Poll(ctx, 10*time.Millisecond, func(ctx context.Context) {
			mu.Lock()
			calls++
			if calls == 3 {
				cancel()
			}
			mu.Unlock()
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Poll to return after cancel")
	}

	mu.Lock()
	if calls < 3 {
		t.Errorf("Expected at least 3 calls before cancel, got %d", calls)
	}
	mu.Unlock()
}

func TestPoll_NonPositiveIntervalIsNoop(t *testing.T) {
	called := false
	Poll(context.Background(), 0, func(ctx context.Context) { called = true })
	if called {
		t.Error("Expected no calls with interval 0")
	}
}
