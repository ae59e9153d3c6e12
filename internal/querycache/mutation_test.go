package querycache

import (
	"testing"
	"time"
)

func TestTx_CommitKeepsAuthoritativeValue(t *testing.T) {
	s := NewStore()
	key := ItemKey("sessions", "detail", "s1")
	s.Set(key, "before")

	tx := s.Begin(key)
	tx.Apply("optimistic")
	tx.Commit("authoritative")

	if v, _ := Value[string](s, key); v != "authoritative" {
		t.Errorf("Expected authoritative value, got %q", v)
	}
}

func TestTx_RollbackRestoresExactEntry(t *testing.T) {
	s := NewStore()
	key := ItemKey("sessions", "detail", "s1")
	fetchedAt := time.Now().Add(-time.Minute)
	s.mu.Lock()
	s.entries[key] = Entry{Status: StatusSuccess, Value: "before", Stale: true, FetchedAt: fetchedAt}
	s.mu.Unlock()

	tx := s.Begin(key)
	tx.Apply("optimistic")
	tx.Rollback()

	e, ok := s.Lookup(key)
	if !ok {
		t.Fatal("Expected entry restored")
	}
	if e.Value != "before" || !e.Stale || !e.FetchedAt.Equal(fetchedAt) {
		t.Errorf("Expected bit-for-bit snapshot restore, got %+v", e)
	}
}

func TestTx_RollbackRemovesEntryThatDidNotExist(t *testing.T) {
	s := NewStore()
	key := ItemKey("sessions", "detail", "fresh")

	tx := s.Begin(key)
	tx.Apply("optimistic")
	tx.Rollback()

	if _, ok := s.Lookup(key); ok {
		t.Error("Expected entry absent after rollback of a create")
	}
}

func TestTx_ClosedTransactionIgnoresFurtherCalls(t *testing.T) {
	s := NewStore()
	key := ItemKey("sessions", "detail", "s1")
	s.Set(key, "before")

	tx := s.Begin(key)
	tx.Apply("optimistic")
	tx.Commit("final")
	tx.Rollback()
	tx.Apply("late")

	if v, _ := Value[string](s, key); v != "final" {
		t.Errorf("Expected committed value untouched, got %q", v)
	}
}

func TestTx_RollbackNotifiesWatchers(t *testing.T) {
	s := NewStore()
	key := ItemKey("sessions", "detail", "s1")
	s.Set(key, "before")

	var events int
	cancel := s.Watch(func(Key) { events++ })
	defer cancel()

	tx := s.Begin(key)
	tx.Apply("optimistic")
	tx.Rollback()

	if events != 2 {
		t.Errorf("Expected apply and rollback notifications, got %d", events)
	}
}
