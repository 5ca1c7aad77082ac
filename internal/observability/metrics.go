package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veritrace/veritrace/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "veritrace-backend"

type AppMetrics struct {
	workflowOpCounter     metric.Int64Counter
	workflowOpDuration    metric.Float64Histogram
	chainCallCounter      metric.Int64Counter
	chainCallDuration     metric.Float64Histogram
	repositoryOpCounter   metric.Int64Counter
	ownerCacheCounter     metric.Int64Counter
	storageOpCounter      metric.Int64Counter
	validationCounter     metric.Int64Counter
	rateLimitCounter      metric.Int64Counter
	healthCheckCounter    metric.Int64Counter
	healthCheckDuration   metric.Float64Histogram
	walletRegistryCounter metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		// Chain calls block on transaction confirmation, so the duration
		// buckets run much wider than typical HTTP latencies.
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "chain.call.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
				},
			},
		)),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "workflow.operation.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 120},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter(meterName)
	workflowOps, err := meter.Int64Counter("workflow.operations")
	if err != nil {
		return nil, err
	}
	workflowDuration, err := meter.Float64Histogram("workflow.operation.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	chainCalls, err := meter.Int64Counter("chain.calls")
	if err != nil {
		return nil, err
	}
	chainDuration, err := meter.Float64Histogram("chain.call.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	repoOps, err := meter.Int64Counter("repository.operations")
	if err != nil {
		return nil, err
	}
	ownerCache, err := meter.Int64Counter("chain.owner.cache.events")
	if err != nil {
		return nil, err
	}
	storageOps, err := meter.Int64Counter("storage.operations")
	if err != nil {
		return nil, err
	}
	validations, err := meter.Int64Counter("http.middleware.validation.events")
	if err != nil {
		return nil, err
	}
	rateLimits, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	healthChecks, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthDuration, err := meter.Float64Histogram("health.check.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	walletRegistry, err := meter.Int64Counter("wallet.registry.events")
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		workflowOpCounter:     workflowOps,
		workflowOpDuration:    workflowDuration,
		chainCallCounter:      chainCalls,
		chainCallDuration:     chainDuration,
		repositoryOpCounter:   repoOps,
		ownerCacheCounter:     ownerCache,
		storageOpCounter:      storageOps,
		validationCounter:     validations,
		rateLimitCounter:      rateLimits,
		healthCheckCounter:    healthChecks,
		healthCheckDuration:   healthDuration,
		walletRegistryCounter: walletRegistry,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

// RecordWorkflowOperation counts one ownership-workflow operation (mint,
// transfer, payment step, ...) with its outcome and wall time.
func RecordWorkflowOperation(ctx context.Context, op, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	)
	m.workflowOpCounter.Add(ctx, 1, attrs)
	m.workflowOpDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordChainCall counts one contract-gateway call, including confirmation wait.
func RecordChainCall(ctx context.Context, op, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.chainCallCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
	m.chainCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", op),
	))
}

func RecordRepositoryOperation(ctx context.Context, entity, op, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.repositoryOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func RecordOwnerCacheEvent(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.ownerCacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordStorageOperation(ctx context.Context, op, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.storageOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.validationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}

func RecordWalletRegistryEvent(ctx context.Context, action, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.walletRegistryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}
