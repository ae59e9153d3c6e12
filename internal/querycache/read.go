package querycache

import (
	"context"
	"time"
)

// Fetcher loads fresh data for one key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Read is the cached read path. A fresh success value is returned as-is.
// A stale or expired value is returned immediately while a background
// revalidation runs. Anything else (idle, error, missing) fetches inline.
//
// A ttl of zero means values never expire by age; they go stale only
// through explicit invalidation.
func Read[T any](ctx context.Context, s *Store, key Key, ttl time.Duration, fetch Fetcher[T]) (T, error) {
	e, ok := s.Lookup(key)
	if ok && e.Status == StatusSuccess {
		if v, isT := e.Value.(T); isT {
			expired := ttl > 0 && time.Since(e.FetchedAt) > ttl
			if !e.Stale && !expired {
				if s.stats != nil {
					s.stats.CacheHit(key)
				}
				return v, nil
			}
			// Serve last-known-good and refresh behind the scenes.
			refresh(context.WithoutCancel(ctx), s, key, fetch)
			return v, nil
		}
	}
	if ok && e.Status == StatusError {
		// A failed refresh keeps the last-known-good value readable.
		// Retry behind the scenes so a transient backend failure heals
		// on a later read instead of pinning the key in the error state.
		if v, isT := e.Value.(T); isT && e.Value != nil {
			refresh(context.WithoutCancel(ctx), s, key, fetch)
			return v, e.Err
		}
	}

	if s.stats != nil {
		s.stats.CacheMiss(key)
	}
	s.MarkLoading(key)
	v, err := fetch(ctx)
	if err != nil {
		s.SetError(key, err)
		var zero T
		return zero, err
	}
	s.Set(key, v)
	return v, nil
}

// refresh runs a background revalidation unless a read-triggered one is
// already in flight for the key, so a burst of stale reads costs one
// backend fetch. Explicit Revalidate calls are never deduplicated.
func refresh[T any](ctx context.Context, s *Store, key Key, fetch Fetcher[T]) {
	if !s.beginRefresh(key) {
		return
	}
	go func() {
		defer s.endRefresh(key)
		Revalidate(ctx, s, key, fetch)
	}()
}

// Revalidate fetches unconditionally and applies the settled result to
// the cache. When several revalidations race, the last one to settle
// wins, which is acceptable because every mutation path finishes with a
// final revalidation.
func Revalidate[T any](ctx context.Context, s *Store, key Key, fetch Fetcher[T]) {
	if s.stats != nil {
		s.stats.CacheRevalidate(key)
	}
	v, err := fetch(ctx)
	if err != nil {
		s.SetError(key, err)
		return
	}
	s.Set(key, v)
}
