// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel provides OpenTelemetry SDK configuration readers and a runtime
// which installs the configured providers globally.
//
// Every component is a config.Reader. Components which depend on an exporter
// propagate an unset exporter as an unset value, so an entire signal pipeline
// can be switched off by leaving its endpoint unconfigured. [Build] falls back
// to no-op providers for any signal which is unset.
//
// Environment Variables:
//   - OTEL_SERVICE_NAME: Service name for resource attributes
//   - OTEL_SERVICE_VERSION: Service version for resource attributes
//   - OTEL_TRACES_SAMPLER_RATIO: Sampling ratio for traces (0.0 to 1.0)
//   - OTEL_BSP_EXPORT_INTERVAL: Batch span processor export interval
//   - OTEL_BSP_MAX_EXPORT_BATCH_SIZE: Maximum batch size for span exports
//   - OTEL_METRIC_EXPORT_INTERVAL: Metric export interval
//   - OTEL_BLP_EXPORT_INTERVAL: Batch log processor export interval
//   - OTEL_BLP_MAX_EXPORT_BATCH_SIZE: Maximum batch size for log exports
package otel

import (
	"context"

	"github.com/z5labs/blogs/config"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
)

// Resource describes the service producing telemetry.
type Resource struct {
	ServiceName    config.Reader[string]
	ServiceVersion config.Reader[string]
}

// ResourceOption is a functional option for configuring a Resource.
type ResourceOption func(*Resource)

// ServiceName sets the service name reader for the resource.
func ServiceName(name config.Reader[string]) ResourceOption {
	return func(r *Resource) {
		r.ServiceName = name
	}
}

// ServiceNameFromEnv reads OTEL_SERVICE_NAME.
func ServiceNameFromEnv() config.Reader[string] {
	return config.Env("OTEL_SERVICE_NAME")
}

// ServiceVersion sets the service version reader for the resource.
func ServiceVersion(version config.Reader[string]) ResourceOption {
	return func(r *Resource) {
		r.ServiceVersion = version
	}
}

// ServiceVersionFromEnv reads OTEL_SERVICE_VERSION.
func ServiceVersionFromEnv() config.Reader[string] {
	return config.Env("OTEL_SERVICE_VERSION")
}

// NewResource creates a new Resource with the given options.
func NewResource(opts ...ResourceOption) Resource {
	res := Resource{
		ServiceName:    config.EmptyReader[string](),
		ServiceVersion: config.EmptyReader[string](),
	}
	for _, o := range opts {
		o(&res)
	}
	return res
}

// Read builds the resource from the telemetry SDK attributes
// plus the configured service name and version.
func (cfg Resource) Read(ctx context.Context) (config.Value[*resource.Resource], error) {
	serviceName := config.MustOr(ctx, "", cfg.ServiceName)
	serviceVersion := config.MustOr(ctx, "", cfg.ServiceVersion)

	rsc, err := resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return config.Value[*resource.Resource]{}, err
	}

	return config.ValueOf(rsc), nil
}
