// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/z5labs/blogs/config"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
)

func TestResource_Read(t *testing.T) {
	t.Run("will include the service name and version", func(t *testing.T) {
		rsc, err := config.Read(context.Background(), NewResource(
			ServiceName(config.ReaderOf("blogs")),
			ServiceVersion(config.ReaderOf("v1.0.0")),
		))
		require.NoError(t, err)

		name, ok := rsc.Set().Value(semconv.ServiceNameKey)
		require.True(t, ok)
		require.Equal(t, "blogs", name.AsString())

		version, ok := rsc.Set().Value(semconv.ServiceVersionKey)
		require.True(t, ok)
		require.Equal(t, "v1.0.0", version.AsString())
	})
}

func TestSignalPipelines(t *testing.T) {
	t.Run("will be unset", func(t *testing.T) {
		t.Run("if the trace exporter is unset", func(t *testing.T) {
			tp := SdkTracerProvider{
				SpanProcessor: NewBatchSpanProcessor(config.EmptyReader[sdktrace.SpanExporter]()),
			}

			_, err := config.Read(context.Background(), tp)
			require.ErrorIs(t, err, config.ErrValueNotSet)
		})

		t.Run("if the metric exporter is unset", func(t *testing.T) {
			mp := SdkMeterProvider{
				Reader: NewPeriodicReader(config.EmptyReader[sdkmetric.Exporter]()),
			}

			_, err := config.Read(context.Background(), mp)
			require.ErrorIs(t, err, config.ErrValueNotSet)
		})

		t.Run("if the log exporter is unset", func(t *testing.T) {
			lp := SdkLoggerProvider{
				LogProcessor: NewBatchLogProcessor(config.EmptyReader[sdklog.Exporter]()),
			}

			_, err := config.Read(context.Background(), lp)
			require.ErrorIs(t, err, config.ErrValueNotSet)
		})
	})

	t.Run("will propagate exporter errors", func(t *testing.T) {
		exportErr := errors.New("failed to dial")
		exporter := config.ReaderFunc[sdktrace.SpanExporter](func(ctx context.Context) (config.Value[sdktrace.SpanExporter], error) {
			return config.Value[sdktrace.SpanExporter]{}, exportErr
		})

		_, err := config.Read(context.Background(), SdkTracerProvider{
			SpanProcessor: NewBatchSpanProcessor(exporter),
		})
		require.ErrorIs(t, err, exportErr)
	})

	t.Run("will export spans", func(t *testing.T) {
		exporter := tracetest.NewInMemoryExporter()

		tpReader := SdkTracerProvider{
			Resource: NewResource(ServiceName(config.ReaderOf("blogs"))),
			Sampler:  NewTraceIDRatioBasedSampler(TraceIDSampleRatio(config.ReaderOf(1.0))),
			SpanProcessor: NewBatchSpanProcessor(
				config.ReaderOf[sdktrace.SpanExporter](exporter),
				ExportInterval(config.ReaderOf(10*time.Millisecond)),
			),
		}

		tp, err := config.Read(context.Background(), tpReader)
		require.NoError(t, err)

		_, span := tp.Tracer("blogs/otel").Start(context.Background(), "list blogs")
		span.SetAttributes(attribute.Int("blogs.count", 3))
		span.End()

		sdkTp := tp.(*sdktrace.TracerProvider)
		require.NoError(t, sdkTp.ForceFlush(context.Background()))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		require.Equal(t, "list blogs", spans[0].Name)
	})
}

func TestStdoutLogExporter(t *testing.T) {
	t.Run("will write records as json lines", func(t *testing.T) {
		var buf bytes.Buffer

		lp, err := config.Read(context.Background(), SdkLoggerProvider{
			LogProcessor: SimpleLogProcessor{
				Exporter: StdoutLogExporter(&buf, slog.LevelInfo),
			},
		})
		require.NoError(t, err)

		var rec log.Record
		rec.SetTimestamp(time.Now())
		rec.SetSeverity(log.SeverityInfo)
		rec.SetBody(log.StringValue("created blog"))
		rec.AddAttributes(
			log.String("title", "Sample Title 4"),
			log.Int64("id", 4),
		)
		lp.Logger("blogs/endpoint").Emit(context.Background(), rec)

		var line map[string]any
		err = json.Unmarshal(buf.Bytes(), &line)
		require.NoError(t, err)
		require.Equal(t, "created blog", line["msg"])
		require.Equal(t, "INFO", line["level"])
		require.Equal(t, "blogs/endpoint", line["logger"])
		require.Equal(t, "Sample Title 4", line["title"])
		require.Equal(t, float64(4), line["id"])
		require.NotContains(t, line, "otel")
	})

	t.Run("will drop records below the configured level", func(t *testing.T) {
		var buf bytes.Buffer

		lp, err := config.Read(context.Background(), SdkLoggerProvider{
			LogProcessor: SimpleLogProcessor{
				Exporter: StdoutLogExporter(&buf, slog.LevelWarn),
			},
		})
		require.NoError(t, err)

		var rec log.Record
		rec.SetSeverity(log.SeverityInfo)
		rec.SetBody(log.StringValue("ignored"))
		lp.Logger("blogs/endpoint").Emit(context.Background(), rec)

		require.Zero(t, buf.Len())
	})
}
