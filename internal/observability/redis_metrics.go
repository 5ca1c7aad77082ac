package observability

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var redisInstrumentationOnce sync.Once

// InstrumentRedisClient attaches command latency and pool saturation metrics
// to the shared redis client. Installed once per process.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	redisInstrumentationOnce.Do(func() {
		hook, err := newRedisMetricsHook(client)
		if err != nil {
			logger.Warn("redis instrumentation disabled", "error", err)
			return
		}
		client.AddHook(hook)
		logger.Info("redis instrumentation enabled")
	})
}

type redisMetricsHook struct {
	cmdTotal   metric.Int64Counter
	cmdLatency metric.Float64Histogram
}

func newRedisMetricsHook(client redis.UniversalClient) (*redisMetricsHook, error) {
	meter := otel.Meter(meterName)

	cmdTotal, err := meter.Int64Counter("redis.command.total")
	if err != nil {
		return nil, err
	}
	cmdLatency, err := meter.Float64Histogram("redis.command.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	poolSaturation, err := meter.Float64ObservableGauge("redis.pool.saturation", metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}
	_, err = meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		stats := client.PoolStats()
		if stats != nil && stats.TotalConns > 0 {
			used := stats.TotalConns - stats.IdleConns
			observer.ObserveFloat64(poolSaturation, float64(used)/float64(stats.TotalConns))
		}
		return nil
	}, poolSaturation)
	if err != nil {
		return nil, err
	}

	return &redisMetricsHook{cmdTotal: cmdTotal, cmdLatency: cmdLatency}, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(ctx, cmd, err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		duration := time.Since(start)
		for _, cmd := range cmds {
			h.record(ctx, cmd, cmd.Err(), duration)
		}
		return err
	}
}

func (h *redisMetricsHook) record(ctx context.Context, cmd redis.Cmder, err error, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("command", strings.ToLower(cmd.Name())),
		attribute.String("status", redisCommandStatus(err)),
	)
	h.cmdTotal.Add(ctx, 1, attrs)
	h.cmdLatency.Record(ctx, duration.Seconds(), attrs)
}

func redisCommandStatus(err error) string {
	switch err {
	case nil:
		return "success"
	case redis.Nil:
		return "miss"
	default:
		return "error"
	}
}
