// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"time"

	"github.com/z5labs/blogs/config"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// PeriodicReader collects and exports metrics at a fixed interval.
type PeriodicReader struct {
	Exporter       config.Reader[sdkmetric.Exporter]
	ExportInterval config.Reader[time.Duration]
}

// PeriodicReaderOption is a functional option for configuring a PeriodicReader.
type PeriodicReaderOption func(*PeriodicReader)

// ExportIntervalMetric sets the export interval reader for the periodic metric reader.
func ExportIntervalMetric(interval config.Reader[time.Duration]) PeriodicReaderOption {
	return func(pr *PeriodicReader) {
		pr.ExportInterval = interval
	}
}

// ExportIntervalMetricFromEnv reads OTEL_METRIC_EXPORT_INTERVAL.
func ExportIntervalMetricFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("OTEL_METRIC_EXPORT_INTERVAL"))
}

// NewPeriodicReader creates a new PeriodicReader with the given exporter and options.
func NewPeriodicReader(exporter config.Reader[sdkmetric.Exporter], opts ...PeriodicReaderOption) PeriodicReader {
	pr := PeriodicReader{
		Exporter:       exporter,
		ExportInterval: config.EmptyReader[time.Duration](),
	}
	for _, o := range opts {
		o(&pr)
	}
	return pr
}

// Read implements the [config.Reader] interface. Go runtime metrics
// are produced alongside application metrics. The default interval is 60 seconds.
func (cfg PeriodicReader) Read(ctx context.Context) (config.Value[sdkmetric.Reader], error) {
	exporter, ok, err := lookup(ctx, cfg.Exporter)
	if !ok || err != nil {
		return config.Value[sdkmetric.Reader]{}, err
	}

	pr := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(config.MustOr(ctx, 60*time.Second, cfg.ExportInterval)),
		sdkmetric.WithProducer(runtime.NewProducer()),
	)

	return config.ValueOf[sdkmetric.Reader](pr), nil
}

// SdkMeterProvider builds an SDK meter provider. It is unset whenever its reader is unset.
type SdkMeterProvider struct {
	Resource config.Reader[*resource.Resource]
	Reader   config.Reader[sdkmetric.Reader]
}

// Read implements the [config.Reader] interface.
func (cfg SdkMeterProvider) Read(ctx context.Context) (config.Value[metric.MeterProvider], error) {
	reader, ok, err := lookup(ctx, cfg.Reader)
	if !ok || err != nil {
		return config.Value[metric.MeterProvider]{}, err
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithReader(reader),
	}

	rsc, ok, err := lookup(ctx, cfg.Resource)
	if err != nil {
		return config.Value[metric.MeterProvider]{}, err
	}
	if ok {
		opts = append(opts, sdkmetric.WithResource(rsc))
	}

	return config.ValueOf[metric.MeterProvider](sdkmetric.NewMeterProvider(opts...)), nil
}
