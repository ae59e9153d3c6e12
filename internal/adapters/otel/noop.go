package otel

import (
	"context"
	"time"
)

// NoOpExporter is a metrics implementation that does nothing. Used for
// graceful degradation when no collector endpoint is configured.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordCacheHit(kind string)                                         {}
func (e *NoOpExporter) RecordCacheMiss(kind string)                                        {}
func (e *NoOpExporter) RecordRevalidate(kind string)                                       {}
func (e *NoOpExporter) RecordMutationFailure(op string)                                    {}
func (e *NoOpExporter) RecordBackendRequest(op string, elapsed time.Duration, failed bool) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
