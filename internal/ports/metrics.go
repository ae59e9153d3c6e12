package ports

import (
	"context"
	"time"
)

// Metrics records cache and backend activity for observability. All
// methods must be safe for concurrent use; implementations that cannot
// export anywhere should be the no-op adapter, never nil.
type Metrics interface {
	// RecordCacheHit counts a read served from cache for an entity kind.
	RecordCacheHit(kind string)
	// RecordCacheMiss counts a read that had to fetch from the backend.
	RecordCacheMiss(kind string)
	// RecordRevalidate counts a background revalidation for an entity kind.
	RecordRevalidate(kind string)
	// RecordMutationFailure counts a failed (rolled-back) mutation.
	RecordMutationFailure(op string)
	// RecordBackendRequest records one backend round-trip.
	RecordBackendRequest(op string, elapsed time.Duration, failed bool)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
