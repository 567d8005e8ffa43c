// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otlp provides OpenTelemetry Protocol (OTLP) exporters for traces, metrics, and logs.
//
// Exporters are config.Readers which are unset while no endpoint is configured,
// so the surrounding otel pipelines fall back to no-op providers. Both the gRPC
// and HTTP/protobuf transports are supported and selected by protocol.
//
// Environment Variables:
//   - OTEL_EXPORTER_OTLP_PROTOCOL: "grpc" (default) or "http/protobuf"
//   - OTEL_EXPORTER_OTLP_ENDPOINT: endpoint shared by every signal
//   - OTEL_EXPORTER_OTLP_TRACES_ENDPOINT: traces-specific endpoint
//   - OTEL_EXPORTER_OTLP_METRICS_ENDPOINT: metrics-specific endpoint
//   - OTEL_EXPORTER_OTLP_LOGS_ENDPOINT: logs-specific endpoint
package otlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/z5labs/blogs/concurrent"
	"github.com/z5labs/blogs/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Protocol is an OTLP transport.
type Protocol string

const (
	ProtocolGrpc         Protocol = "grpc"
	ProtocolHttpProtobuf Protocol = "http/protobuf"
)

// UnsupportedProtocolError is returned for any protocol other than
// [ProtocolGrpc] or [ProtocolHttpProtobuf].
type UnsupportedProtocolError struct {
	Protocol Protocol
}

// Error implements the [error] interface.
func (e UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("unsupported otlp protocol: %q", string(e.Protocol))
}

// ProtocolFromEnv reads OTEL_EXPORTER_OTLP_PROTOCOL.
func ProtocolFromEnv() config.Reader[Protocol] {
	return config.Map(config.Env("OTEL_EXPORTER_OTLP_PROTOCOL"), func(ctx context.Context, s string) (Protocol, error) {
		p := Protocol(strings.TrimSpace(s))
		switch p {
		case ProtocolGrpc, ProtocolHttpProtobuf:
			return p, nil
		default:
			return p, UnsupportedProtocolError{Protocol: p}
		}
	})
}

// Signal names the kind of telemetry being exported.
type Signal string

const (
	Traces  Signal = "TRACES"
	Metrics Signal = "METRICS"
	Logs    Signal = "LOGS"
)

// EndpointFromEnv reads the signal specific endpoint and falls back to
// OTEL_EXPORTER_OTLP_ENDPOINT.
func EndpointFromEnv(signal Signal) config.Reader[string] {
	return config.Or(
		config.Env("OTEL_EXPORTER_OTLP_"+string(signal)+"_ENDPOINT"),
		config.Env("OTEL_EXPORTER_OTLP_ENDPOINT"),
	)
}

var conns = concurrent.NewCache[string, *grpc.ClientConn]()

// GrpcConn returns a single shared client connection per target so every
// signal exporting to the same collector reuses it.
func GrpcConn(endpoint config.Reader[string]) config.Reader[*grpc.ClientConn] {
	return config.Map(endpoint, func(ctx context.Context, endpoint string) (*grpc.ClientConn, error) {
		target := grpcTarget(endpoint)

		return conns.GetOr(target, func() (*grpc.ClientConn, error) {
			return grpc.NewClient(
				target,
				grpc.WithTransportCredentials(insecure.NewCredentials()),
			)
		})
	})
}

func grpcTarget(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

type httpEndpoint struct {
	host     string
	path     string
	insecure bool
}

func parseHttpEndpoint(endpoint string) httpEndpoint {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return httpEndpoint{host: endpoint, insecure: true}
	}

	ep := httpEndpoint{
		host:     u.Host,
		insecure: u.Scheme != "https",
	}
	if u.Path != "" && u.Path != "/" {
		ep.path = u.Path
	}
	return ep
}

// Exporter configures the transport for a single signal.
type Exporter struct {
	Protocol config.Reader[Protocol]
	Endpoint config.Reader[string]
}

// ExporterFromEnv configures an exporter for signal from the standard
// OTLP environment variables.
func ExporterFromEnv(signal Signal, overrides ...func(*Exporter)) Exporter {
	exp := Exporter{
		Protocol: ProtocolFromEnv(),
		Endpoint: EndpointFromEnv(signal),
	}
	for _, o := range overrides {
		o(&exp)
	}
	return exp
}

func (cfg Exporter) resolve(ctx context.Context) (Protocol, string, bool, error) {
	endpoint, err := config.Read(ctx, cfg.Endpoint)
	if errors.Is(err, config.ErrValueNotSet) || (err == nil && endpoint == "") {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}

	protocol, err := config.Read(ctx, cfg.Protocol)
	if errors.Is(err, config.ErrValueNotSet) {
		return ProtocolGrpc, endpoint, true, nil
	}
	if err != nil {
		return "", "", false, err
	}
	return protocol, endpoint, true, nil
}

// TraceExporter exports spans over OTLP.
type TraceExporter Exporter

// Read implements the [config.Reader] interface.
func (cfg TraceExporter) Read(ctx context.Context) (config.Value[sdktrace.SpanExporter], error) {
	protocol, endpoint, ok, err := Exporter(cfg).resolve(ctx)
	if !ok || err != nil {
		return config.Value[sdktrace.SpanExporter]{}, err
	}

	var exp sdktrace.SpanExporter
	switch protocol {
	case ProtocolGrpc:
		conn, cerr := config.Read(ctx, GrpcConn(config.ReaderOf(endpoint)))
		if cerr != nil {
			return config.Value[sdktrace.SpanExporter]{}, cerr
		}
		exp, err = otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	case ProtocolHttpProtobuf:
		ep := parseHttpEndpoint(endpoint)
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(ep.host)}
		if ep.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if ep.path != "" {
			opts = append(opts, otlptracehttp.WithURLPath(ep.path))
		}
		exp, err = otlptracehttp.New(ctx, opts...)
	default:
		err = UnsupportedProtocolError{Protocol: protocol}
	}
	if err != nil {
		return config.Value[sdktrace.SpanExporter]{}, err
	}
	return config.ValueOf(exp), nil
}

// MetricExporter exports metrics over OTLP.
type MetricExporter Exporter

// Read implements the [config.Reader] interface.
func (cfg MetricExporter) Read(ctx context.Context) (config.Value[sdkmetric.Exporter], error) {
	protocol, endpoint, ok, err := Exporter(cfg).resolve(ctx)
	if !ok || err != nil {
		return config.Value[sdkmetric.Exporter]{}, err
	}

	var exp sdkmetric.Exporter
	switch protocol {
	case ProtocolGrpc:
		conn, cerr := config.Read(ctx, GrpcConn(config.ReaderOf(endpoint)))
		if cerr != nil {
			return config.Value[sdkmetric.Exporter]{}, cerr
		}
		exp, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	case ProtocolHttpProtobuf:
		ep := parseHttpEndpoint(endpoint)
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(ep.host)}
		if ep.insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if ep.path != "" {
			opts = append(opts, otlpmetrichttp.WithURLPath(ep.path))
		}
		exp, err = otlpmetrichttp.New(ctx, opts...)
	default:
		err = UnsupportedProtocolError{Protocol: protocol}
	}
	if err != nil {
		return config.Value[sdkmetric.Exporter]{}, err
	}
	return config.ValueOf(exp), nil
}

// LogExporter exports log records over OTLP.
type LogExporter Exporter

// Read implements the [config.Reader] interface.
func (cfg LogExporter) Read(ctx context.Context) (config.Value[sdklog.Exporter], error) {
	protocol, endpoint, ok, err := Exporter(cfg).resolve(ctx)
	if !ok || err != nil {
		return config.Value[sdklog.Exporter]{}, err
	}

	var exp sdklog.Exporter
	switch protocol {
	case ProtocolGrpc:
		conn, cerr := config.Read(ctx, GrpcConn(config.ReaderOf(endpoint)))
		if cerr != nil {
			return config.Value[sdklog.Exporter]{}, cerr
		}
		exp, err = otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(conn))
	case ProtocolHttpProtobuf:
		ep := parseHttpEndpoint(endpoint)
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(ep.host)}
		if ep.insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		if ep.path != "" {
			opts = append(opts, otlploghttp.WithURLPath(ep.path))
		}
		exp, err = otlploghttp.New(ctx, opts...)
	default:
		err = UnsupportedProtocolError{Protocol: protocol}
	}
	if err != nil {
		return config.Value[sdklog.Exporter]{}, err
	}
	return config.ValueOf(exp), nil
}
