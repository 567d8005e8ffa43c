// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"time"

	"github.com/z5labs/blogs/config"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDRatioBasedSampler samples a fraction of root traces by trace ID
// and otherwise follows the parent's sampling decision.
type TraceIDRatioBasedSampler struct {
	Ratio config.Reader[float64]
}

// TraceIDRatioBasedSamplerOption is a functional option for configuring a TraceIDRatioBasedSampler.
type TraceIDRatioBasedSamplerOption func(*TraceIDRatioBasedSampler)

// TraceIDSampleRatio sets the sampling ratio reader for the sampler.
func TraceIDSampleRatio(ratio config.Reader[float64]) TraceIDRatioBasedSamplerOption {
	return func(s *TraceIDRatioBasedSampler) {
		s.Ratio = ratio
	}
}

// TraceIDSampleRatioFromEnv reads OTEL_TRACES_SAMPLER_RATIO.
func TraceIDSampleRatioFromEnv() config.Reader[float64] {
	return config.Float64FromString(config.Env("OTEL_TRACES_SAMPLER_RATIO"))
}

// NewTraceIDRatioBasedSampler creates a new TraceIDRatioBasedSampler with the given options.
func NewTraceIDRatioBasedSampler(opts ...TraceIDRatioBasedSamplerOption) TraceIDRatioBasedSampler {
	sampler := TraceIDRatioBasedSampler{
		Ratio: config.EmptyReader[float64](),
	}
	for _, o := range opts {
		o(&sampler)
	}
	return sampler
}

// Read implements the [config.Reader] interface. The default ratio is 1.0.
func (cfg TraceIDRatioBasedSampler) Read(ctx context.Context) (config.Value[sdktrace.Sampler], error) {
	ratio := config.MustOr(ctx, 1.0, cfg.Ratio)

	return config.ValueOf(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))), nil
}

// BatchSpanProcessor batches completed spans before handing them to the exporter.
type BatchSpanProcessor struct {
	Exporter           config.Reader[sdktrace.SpanExporter]
	ExportInterval     config.Reader[time.Duration]
	MaxExportBatchSize config.Reader[int]
}

// BatchSpanProcessorOption is a functional option for configuring a BatchSpanProcessor.
type BatchSpanProcessorOption func(*BatchSpanProcessor)

// ExportInterval sets the export interval reader for the batch span processor.
func ExportInterval(interval config.Reader[time.Duration]) BatchSpanProcessorOption {
	return func(bsp *BatchSpanProcessor) {
		bsp.ExportInterval = interval
	}
}

// ExportIntervalFromEnv reads OTEL_BSP_EXPORT_INTERVAL.
func ExportIntervalFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("OTEL_BSP_EXPORT_INTERVAL"))
}

// MaxExportBatchSize sets the maximum export batch size reader for the batch span processor.
func MaxExportBatchSize(size config.Reader[int]) BatchSpanProcessorOption {
	return func(bsp *BatchSpanProcessor) {
		bsp.MaxExportBatchSize = size
	}
}

// MaxExportBatchSizeFromEnv reads OTEL_BSP_MAX_EXPORT_BATCH_SIZE.
func MaxExportBatchSizeFromEnv() config.Reader[int] {
	return config.IntFromString(config.Env("OTEL_BSP_MAX_EXPORT_BATCH_SIZE"))
}

// NewBatchSpanProcessor creates a new BatchSpanProcessor with the given exporter and options.
func NewBatchSpanProcessor(exporter config.Reader[sdktrace.SpanExporter], opts ...BatchSpanProcessorOption) BatchSpanProcessor {
	bsp := BatchSpanProcessor{
		Exporter:           exporter,
		ExportInterval:     config.EmptyReader[time.Duration](),
		MaxExportBatchSize: config.EmptyReader[int](),
	}
	for _, o := range opts {
		o(&bsp)
	}
	return bsp
}

// Read implements the [config.Reader] interface.
//
// Defaults:
//   - ExportInterval: 5 seconds
//   - MaxExportBatchSize: 512 spans
func (cfg BatchSpanProcessor) Read(ctx context.Context) (config.Value[sdktrace.SpanProcessor], error) {
	exporter, ok, err := lookup(ctx, cfg.Exporter)
	if !ok || err != nil {
		return config.Value[sdktrace.SpanProcessor]{}, err
	}

	bsp := sdktrace.NewBatchSpanProcessor(
		exporter,
		sdktrace.WithBatchTimeout(config.MustOr(ctx, 5*time.Second, cfg.ExportInterval)),
		sdktrace.WithMaxExportBatchSize(config.MustOr(ctx, 512, cfg.MaxExportBatchSize)),
	)

	return config.ValueOf[sdktrace.SpanProcessor](bsp), nil
}

// SdkTracerProvider builds an SDK tracer provider. It is unset whenever
// its span processor is unset.
type SdkTracerProvider struct {
	Resource      config.Reader[*resource.Resource]
	Sampler       config.Reader[sdktrace.Sampler]
	SpanProcessor config.Reader[sdktrace.SpanProcessor]
}

// Read implements the [config.Reader] interface.
func (cfg SdkTracerProvider) Read(ctx context.Context) (config.Value[trace.TracerProvider], error) {
	spanProcessor, ok, err := lookup(ctx, cfg.SpanProcessor)
	if !ok || err != nil {
		return config.Value[trace.TracerProvider]{}, err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSpanProcessor(spanProcessor),
		sdktrace.WithSampler(config.MustOr(ctx, sdktrace.ParentBased(sdktrace.AlwaysSample()), cfg.Sampler)),
	}

	rsc, ok, err := lookup(ctx, cfg.Resource)
	if err != nil {
		return config.Value[trace.TracerProvider]{}, err
	}
	if ok {
		opts = append(opts, sdktrace.WithResource(rsc))
	}

	return config.ValueOf[trace.TracerProvider](sdktrace.NewTracerProvider(opts...)), nil
}

// lookup reads r and reports whether a value was set.
// A nil reader is treated as unset.
func lookup[T any](ctx context.Context, r config.Reader[T]) (T, bool, error) {
	var zero T
	if r == nil {
		return zero, false, nil
	}

	val, err := r.Read(ctx)
	if err != nil {
		return zero, false, err
	}

	v, ok := val.Value()
	return v, ok, nil
}
