// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"io"
	"log/slog"

	"github.com/z5labs/blogs/config"
	"github.com/z5labs/blogs/otel"
	"github.com/z5labs/blogs/otel/otlp"

	"go.opentelemetry.io/otel/log"
)

// SDK configures OpenTelemetry for the service.
//
// Traces and metrics are exported over OTLP once an endpoint is configured
// and are disabled otherwise. Logs are exported over OTLP when configured
// and written to stdout as JSON lines when not.
func SDK(stdout io.Writer, level slog.Leveler) otel.SDK {
	rsc := otel.NewResource(
		otel.ServiceName(config.Default("blogs", otel.ServiceNameFromEnv())),
		otel.ServiceVersion(otel.ServiceVersionFromEnv()),
	)

	return otel.SDK{
		TracerProvider: otel.SdkTracerProvider{
			Resource: rsc,
			Sampler:  otel.NewTraceIDRatioBasedSampler(otel.TraceIDSampleRatio(otel.TraceIDSampleRatioFromEnv())),
			SpanProcessor: otel.NewBatchSpanProcessor(
				otlp.TraceExporter(otlp.ExporterFromEnv(otlp.Traces)),
				otel.ExportInterval(otel.ExportIntervalFromEnv()),
				otel.MaxExportBatchSize(otel.MaxExportBatchSizeFromEnv()),
			),
		},
		MeterProvider: otel.SdkMeterProvider{
			Resource: rsc,
			Reader: otel.NewPeriodicReader(
				otlp.MetricExporter(otlp.ExporterFromEnv(otlp.Metrics)),
				otel.ExportIntervalMetric(otel.ExportIntervalMetricFromEnv()),
			),
		},
		LoggerProvider: config.Or[log.LoggerProvider](
			otel.SdkLoggerProvider{
				Resource: rsc,
				LogProcessor: otel.NewBatchLogProcessor(
					otlp.LogExporter(otlp.ExporterFromEnv(otlp.Logs)),
					otel.ExportIntervalLog(otel.ExportIntervalLogFromEnv()),
					otel.MaxExportBatchSizeLog(otel.MaxExportBatchSizeLogFromEnv()),
				),
			},
			otel.SdkLoggerProvider{
				Resource: rsc,
				LogProcessor: otel.SimpleLogProcessor{
					Exporter: otel.StdoutLogExporter(stdout, level),
				},
			},
		),
	}
}
