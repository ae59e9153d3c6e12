package querycache

import (
	"sync"
	"time"
)

// Status is the lifecycle state of one cached read.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is the cached state for one key. Values are treated as immutable:
// writers replace them, never modify them in place, so a snapshot taken
// before a mutation restores the exact pre-mutation state.
type Entry struct {
	Status    Status
	Value     any
	Err       error
	Stale     bool
	FetchedAt time.Time
}

// Stats receives cache events, for metrics. All methods may be called
// concurrently.
type Stats interface {
	CacheHit(key Key)
	CacheMiss(key Key)
	CacheRevalidate(key Key)
}

// Store is the shared cache. All access is through its methods; nothing
// else may mutate cached entities.
type Store struct {
	mu         sync.RWMutex
	entries    map[Key]Entry
	watchers   map[int]func(Key)
	refreshing map[Key]bool
	nextID     int
	stats      Stats
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries:    make(map[Key]Entry),
		watchers:   make(map[int]func(Key)),
		refreshing: make(map[Key]bool),
	}
}

// beginRefresh claims the read-triggered refresh slot for a key. It
// returns false when a refresh is already in flight.
func (s *Store) beginRefresh(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshing[key] {
		return false
	}
	s.refreshing[key] = true
	return true
}

func (s *Store) endRefresh(key Key) {
	s.mu.Lock()
	delete(s.refreshing, key)
	s.mu.Unlock()
}

// SetStats installs a cache event receiver. Call before use.
func (s *Store) SetStats(st Stats) {
	s.stats = st
}

// Lookup returns the entry for a key, if any.
func (s *Store) Lookup(key Key) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Set stores a successful value and clears staleness.
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	s.entries[key] = Entry{Status: StatusSuccess, Value: value, FetchedAt: time.Now()}
	s.mu.Unlock()
	s.notify(key)
}

// SetError records a failed fetch. A previous value, if any, is kept so
// the view can keep rendering last-known-good data.
func (s *Store) SetError(key Key, err error) {
	s.mu.Lock()
	e := s.entries[key]
	e.Status = StatusError
	e.Err = err
	s.entries[key] = e
	s.mu.Unlock()
	s.notify(key)
}

// MarkLoading transitions a key into the loading state.
func (s *Store) MarkLoading(key Key) {
	s.mu.Lock()
	e := s.entries[key]
	e.Status = StatusLoading
	e.Err = nil
	s.entries[key] = e
	s.mu.Unlock()
	s.notify(key)
}

// Invalidate marks a key stale. The cached value stays readable until the
// next revalidation replaces it.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		e.Stale = true
		s.entries[key] = e
	}
	s.mu.Unlock()
	if ok {
		s.notify(key)
	}
}

// InvalidateMatching marks every key under a prefix stale in one pass.
// Empty prefix components match anything.
func (s *Store) InvalidateMatching(kind, op string) {
	var touched []Key
	s.mu.Lock()
	for k, e := range s.entries {
		if k.Matches(kind, op) {
			e.Stale = true
			s.entries[k] = e
			touched = append(touched, k)
		}
	}
	s.mu.Unlock()
	for _, k := range touched {
		s.notify(k)
	}
}

// UpdateMatching rewrites every cached value under a prefix in one batch,
// under a single lock. Entries without a success value are skipped. The
// rewrite function must return a fresh value, not modify its argument.
func (s *Store) UpdateMatching(kind, op string, fn func(key Key, value any) any) {
	var touched []Key
	s.mu.Lock()
	for k, e := range s.entries {
		if !k.Matches(kind, op) || e.Status != StatusSuccess {
			continue
		}
		e.Value = fn(k, e.Value)
		s.entries[k] = e
		touched = append(touched, k)
	}
	s.mu.Unlock()
	for _, k := range touched {
		s.notify(k)
	}
}

// Delete removes a key outright.
func (s *Store) Delete(key Key) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	s.notify(key)
}

// Watch registers a change listener and returns its cancel function.
// Listeners are called after every entry change, outside the store lock.
func (s *Store) Watch(fn func(Key)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(key Key) {
	s.mu.RLock()
	fns := make([]func(Key), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(key)
	}
}

// Value returns the cached success value for a key typed as T.
func Value[T any](s *Store, key Key) (T, bool) {
	var zero T
	e, ok := s.Lookup(key)
	if !ok || e.Status != StatusSuccess {
		return zero, false
	}
	v, ok := e.Value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
