// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/z5labs/blogs/config"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

// BatchLogProcessor batches log records before handing them to the exporter.
type BatchLogProcessor struct {
	Exporter           config.Reader[sdklog.Exporter]
	ExportInterval     config.Reader[time.Duration]
	MaxExportBatchSize config.Reader[int]
}

// BatchLogProcessorOption is a functional option for configuring a BatchLogProcessor.
type BatchLogProcessorOption func(*BatchLogProcessor)

// ExportIntervalLog sets the export interval reader for the batch log processor.
func ExportIntervalLog(interval config.Reader[time.Duration]) BatchLogProcessorOption {
	return func(blp *BatchLogProcessor) {
		blp.ExportInterval = interval
	}
}

// ExportIntervalLogFromEnv reads OTEL_BLP_EXPORT_INTERVAL.
func ExportIntervalLogFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("OTEL_BLP_EXPORT_INTERVAL"))
}

// MaxExportBatchSizeLog sets the maximum export batch size reader for the batch log processor.
func MaxExportBatchSizeLog(size config.Reader[int]) BatchLogProcessorOption {
	return func(blp *BatchLogProcessor) {
		blp.MaxExportBatchSize = size
	}
}

// MaxExportBatchSizeLogFromEnv reads OTEL_BLP_MAX_EXPORT_BATCH_SIZE.
func MaxExportBatchSizeLogFromEnv() config.Reader[int] {
	return config.IntFromString(config.Env("OTEL_BLP_MAX_EXPORT_BATCH_SIZE"))
}

// NewBatchLogProcessor creates a new BatchLogProcessor with the given exporter and options.
func NewBatchLogProcessor(exporter config.Reader[sdklog.Exporter], opts ...BatchLogProcessorOption) BatchLogProcessor {
	blp := BatchLogProcessor{
		Exporter:           exporter,
		ExportInterval:     config.EmptyReader[time.Duration](),
		MaxExportBatchSize: config.EmptyReader[int](),
	}
	for _, o := range opts {
		o(&blp)
	}
	return blp
}

// Read implements the [config.Reader] interface.
//
// Defaults:
//   - ExportInterval: 1 second
//   - MaxExportBatchSize: 512 records
func (cfg BatchLogProcessor) Read(ctx context.Context) (config.Value[sdklog.Processor], error) {
	exporter, ok, err := lookup(ctx, cfg.Exporter)
	if !ok || err != nil {
		return config.Value[sdklog.Processor]{}, err
	}

	blp := sdklog.NewBatchProcessor(
		exporter,
		sdklog.WithExportInterval(config.MustOr(ctx, 1*time.Second, cfg.ExportInterval)),
		sdklog.WithExportMaxBatchSize(config.MustOr(ctx, 512, cfg.MaxExportBatchSize)),
	)
	return config.ValueOf[sdklog.Processor](blp), nil
}

// SimpleLogProcessor exports every record synchronously as it is emitted.
// It is meant for local exporters such as [StdoutLogExporter].
type SimpleLogProcessor struct {
	Exporter config.Reader[sdklog.Exporter]
}

// Read implements the [config.Reader] interface.
func (cfg SimpleLogProcessor) Read(ctx context.Context) (config.Value[sdklog.Processor], error) {
	exporter, ok, err := lookup(ctx, cfg.Exporter)
	if !ok || err != nil {
		return config.Value[sdklog.Processor]{}, err
	}

	return config.ValueOf[sdklog.Processor](sdklog.NewSimpleProcessor(exporter)), nil
}

// SdkLoggerProvider builds an SDK logger provider. It is unset whenever its processor is unset.
type SdkLoggerProvider struct {
	Resource     config.Reader[*resource.Resource]
	LogProcessor config.Reader[sdklog.Processor]
}

// Read implements the [config.Reader] interface.
func (cfg SdkLoggerProvider) Read(ctx context.Context) (config.Value[log.LoggerProvider], error) {
	logProcessor, ok, err := lookup(ctx, cfg.LogProcessor)
	if !ok || err != nil {
		return config.Value[log.LoggerProvider]{}, err
	}

	opts := []sdklog.LoggerProviderOption{
		sdklog.WithProcessor(logProcessor),
	}

	rsc, ok, err := lookup(ctx, cfg.Resource)
	if err != nil {
		return config.Value[log.LoggerProvider]{}, err
	}
	if ok {
		opts = append(opts, sdklog.WithResource(rsc))
	}

	return config.ValueOf[log.LoggerProvider](sdklog.NewLoggerProvider(opts...)), nil
}

// StdoutLogExporter writes log records as JSON lines to w using [slog.JSONHandler].
func StdoutLogExporter(w io.Writer, level slog.Leveler) config.Reader[sdklog.Exporter] {
	return config.ReaderFunc[sdklog.Exporter](func(ctx context.Context) (config.Value[sdklog.Exporter], error) {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
		return config.ValueOf[sdklog.Exporter](&slogExporter{handler: h}), nil
	})
}

type slogExporter struct {
	handler slog.Handler
}

const sevOffset = log.SeverityDebug - log.Severity(slog.LevelDebug)

// Export implements the [sdklog.Exporter] interface.
func (s *slogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	for i := range records {
		record := &records[i]

		level := slog.Level(record.Severity() - sevOffset)
		if !s.handler.Enabled(ctx, level) {
			continue
		}

		sr := slog.NewRecord(record.Timestamp(), level, record.Body().AsString(), 0)
		sr.AddAttrs(slog.String("logger", record.InstrumentationScope().Name))

		record.WalkAttributes(func(kv log.KeyValue) bool {
			sr.AddAttrs(slog.Attr{
				Key:   kv.Key,
				Value: slogValue(kv.Value),
			})
			return true
		})

		if traceID := record.TraceID(); traceID.IsValid() {
			sr.AddAttrs(slog.Group(
				"otel",
				slog.String("trace_id", traceID.String()),
				slog.String("span_id", record.SpanID().String()),
			))
		}

		if err := s.handler.Handle(ctx, sr); err != nil {
			return err
		}
	}
	return nil
}

func slogValue(v log.Value) slog.Value {
	switch v.Kind() {
	case log.KindBool:
		return slog.BoolValue(v.AsBool())
	case log.KindBytes:
		return slog.AnyValue(v.AsBytes())
	case log.KindFloat64:
		return slog.Float64Value(v.AsFloat64())
	case log.KindInt64:
		return slog.Int64Value(v.AsInt64())
	case log.KindMap:
		kvs := v.AsMap()
		attrs := make([]slog.Attr, len(kvs))
		for i, kv := range kvs {
			attrs[i] = slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)}
		}
		return slog.GroupValue(attrs...)
	case log.KindSlice:
		vs := v.AsSlice()
		vals := make([]any, len(vs))
		for i := range vs {
			vals[i] = slogValue(vs[i]).Any()
		}
		return slog.AnyValue(vals)
	case log.KindString:
		return slog.StringValue(v.AsString())
	default:
		return slog.StringValue(v.String())
	}
}

// ForceFlush implements the [sdklog.Exporter] interface.
func (s *slogExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements the [sdklog.Exporter] interface.
func (s *slogExporter) Shutdown(ctx context.Context) error {
	return nil
}
