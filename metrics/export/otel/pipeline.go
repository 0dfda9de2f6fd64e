package otel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// ScopeName is the instrumentation scope of every engine instrument.
const ScopeName = "github.com/MrEthical07/lmsAuth"

const defaultInterval = 30 * time.Second

// PipelineConfig describes where engine metrics are pushed.
type PipelineConfig struct {
	ServiceName string
	// Endpoint is the OTLP/gRPC collector as host:port.
	Endpoint string
	Insecure bool
	// Interval between pushes. Zero means 30s.
	Interval time.Duration
}

// Pipeline owns a MeterProvider that publishes one source.
type Pipeline struct {
	provider *sdkmetric.MeterProvider
	exporter *Exporter
}

// Start pushes source metrics to an OTLP/gRPC collector on a periodic reader.
// The connection is made lazily, so an unreachable collector does not fail
// Start.
func Start(ctx context.Context, cfg PipelineConfig, source MetricsSource) (*Pipeline, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return NewPipeline(ctx, cfg.ServiceName, sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval)), source)
}

// NewPipeline publishes source through reader under a service.name resource.
func NewPipeline(ctx context.Context, serviceName string, reader sdkmetric.Reader, source MetricsSource) (*Pipeline, error) {
	if serviceName == "" {
		serviceName = "lmsauth"
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	exporter, err := NewExporter(provider.Meter(ScopeName), source)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	return &Pipeline{provider: provider, exporter: exporter}, nil
}

// Shutdown unregisters the instruments and flushes the provider.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return errors.Join(p.exporter.Close(), p.provider.Shutdown(ctx))
}
