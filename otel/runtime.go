// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"time"

	"github.com/z5labs/blogs/app"
	"github.com/z5labs/blogs/config"

	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SDK defines the OpenTelemetry SDK configuration readers.
//
// All fields are optional. Unset signals fall back to:
//   - TextMapPropagator: Composite propagator (Baggage + TraceContext)
//   - TracerProvider: No-op tracer provider
//   - MeterProvider: No-op meter provider
//   - LoggerProvider: No-op logger provider
type SDK struct {
	TextMapPropagator config.Reader[propagation.TextMapPropagator]
	TracerProvider    config.Reader[trace.TracerProvider]
	MeterProvider     config.Reader[metric.MeterProvider]
	LoggerProvider    config.Reader[log.LoggerProvider]

	// ShutdownTimeout bounds how long providers may spend flushing
	// buffered telemetry on exit. The default is 5 seconds.
	ShutdownTimeout config.Reader[time.Duration]
}

// Runtime installs the configured providers globally for the lifetime of
// an inner runtime and shuts them down afterward. Use [Build] to construct it.
type Runtime struct {
	inner           app.Runtime
	tracerProvider  trace.TracerProvider
	meterProvider   metric.MeterProvider
	loggerProvider  log.LoggerProvider
	shutdownTimeout time.Duration
}

// Build wraps builder with OpenTelemetry initialization.
//
// The providers are registered globally before the inner builder runs so
// anything it constructs, such as loggers from the root package, binds to them.
// Go runtime metrics are started against the registered meter provider.
func Build[T app.Runtime](sdk SDK, builder app.Builder[T]) app.Builder[Runtime] {
	return app.BuilderFunc[Runtime](func(ctx context.Context) (Runtime, error) {
		defaultTextMapPropagator := propagation.NewCompositeTextMapPropagator(
			propagation.Baggage{},
			propagation.TraceContext{},
		)
		var defaultTracerProvider trace.TracerProvider = tracenoop.NewTracerProvider()
		var defaultMeterProvider metric.MeterProvider = metricnoop.NewMeterProvider()
		var defaultLoggerProvider log.LoggerProvider = lognoop.NewLoggerProvider()

		tmp := config.MustOr(ctx, defaultTextMapPropagator, sdk.TextMapPropagator)
		tp := config.MustOr(ctx, defaultTracerProvider, sdk.TracerProvider)
		mp := config.MustOr(ctx, defaultMeterProvider, sdk.MeterProvider)
		lp := config.MustOr(ctx, defaultLoggerProvider, sdk.LoggerProvider)

		otel.SetTextMapPropagator(tmp)
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		global.SetLoggerProvider(lp)

		err := runtime.Start(
			runtime.WithMeterProvider(mp),
			runtime.WithMinimumReadMemStatsInterval(time.Second),
		)
		if err != nil {
			return Runtime{}, errors.Join(err, shutdown(context.WithoutCancel(ctx), tp, mp, lp))
		}

		inner, err := builder.Build(ctx)
		if err != nil {
			return Runtime{}, errors.Join(err, shutdown(context.WithoutCancel(ctx), tp, mp, lp))
		}

		return Runtime{
			inner:           inner,
			tracerProvider:  tp,
			meterProvider:   mp,
			loggerProvider:  lp,
			shutdownTimeout: config.MustOr(ctx, 5*time.Second, sdk.ShutdownTimeout),
		}, nil
	})
}

// Run runs the inner runtime and then shuts down every provider,
// even if the inner runtime fails. All errors are joined.
func (rt Runtime) Run(ctx context.Context) (err error) {
	defer try.Close(&err, closerFunc(func() error {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.shutdownTimeout)
		defer cancel()

		return shutdown(shutdownCtx, rt.tracerProvider, rt.meterProvider, rt.loggerProvider)
	}))

	return rt.inner.Run(ctx)
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

type shutdowner interface {
	Shutdown(context.Context) error
}

func shutdown(ctx context.Context, vs ...any) error {
	var allErrors error
	for _, v := range vs {
		s, ok := v.(shutdowner)
		if !ok {
			continue
		}
		allErrors = errors.Join(allErrors, s.Shutdown(ctx))
	}
	return allErrors
}
