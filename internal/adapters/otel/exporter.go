package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "agentdeck"
	serviceVersion = "1.0.0"
)

// Exporter ships cache and backend metrics to an OTEL Collector.
type Exporter struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
	revalidations    metric.Int64Counter
	mutationFailures metric.Int64Counter
	requestDuration  metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	cacheHits, err := meter.Int64Counter(
		"agentdeck_cache_hits_total",
		metric.WithDescription("Reads served from the query cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache hits counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter(
		"agentdeck_cache_misses_total",
		metric.WithDescription("Reads that had to fetch from the backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache misses counter: %w", err)
	}

	revalidations, err := meter.Int64Counter(
		"agentdeck_cache_revalidations_total",
		metric.WithDescription("Background cache revalidations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating revalidations counter: %w", err)
	}

	mutationFailures, err := meter.Int64Counter(
		"agentdeck_mutation_failures_total",
		metric.WithDescription("Mutations that failed and rolled back"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mutation failures counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"agentdeck_backend_request_seconds",
		metric.WithDescription("Backend request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request duration histogram: %w", err)
	}

	return &Exporter{
		provider:         provider,
		meter:            meter,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		revalidations:    revalidations,
		mutationFailures: mutationFailures,
		requestDuration:  requestDuration,
	}, nil
}

func (e *Exporter) RecordCacheHit(kind string) {
	e.cacheHits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (e *Exporter) RecordCacheMiss(kind string) {
	e.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (e *Exporter) RecordRevalidate(kind string) {
	e.revalidations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (e *Exporter) RecordMutationFailure(op string) {
	e.mutationFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", op)))
}

func (e *Exporter) RecordBackendRequest(op string, elapsed time.Duration, failed bool) {
	e.requestDuration.Record(context.Background(), elapsed.Seconds(), metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("failed", failed),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
