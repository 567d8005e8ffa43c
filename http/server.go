// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http runs an [http.Handler] as an [app.Runtime].
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/z5labs/blogs"
	"github.com/z5labs/blogs/app"
	"github.com/z5labs/blogs/config"

	"github.com/sourcegraph/conc/pool"
)

// DefaultPort is used when no port or address is configured.
const DefaultPort = 3000

// TCPListener lazily opens a TCP listener on the configured address.
type TCPListener struct {
	Addr config.Reader[string]
}

// TCPListenerOption is a functional option for configuring a TCPListener.
type TCPListenerOption func(*TCPListener)

// Addr sets the network address for the listener, in the form "host:port" or ":port".
func Addr(addr config.Reader[string]) TCPListenerOption {
	return func(tcpLn *TCPListener) {
		tcpLn.Addr = addr
	}
}

// Port listens on all interfaces at the given port.
// Ports outside of 0 to 65535 are rejected when the listener is read.
func Port(port config.Reader[int]) TCPListenerOption {
	return Addr(config.Map(port, func(ctx context.Context, p int) (string, error) {
		if p < 0 || p > 65535 {
			return "", InvalidPortError{Port: p}
		}
		return ":" + strconv.Itoa(p), nil
	}))
}

// PortFromEnv reads the PORT environment variable.
func PortFromEnv() config.Reader[int] {
	return config.IntFromString(config.Env("PORT"))
}

// InvalidPortError is returned when a configured port cannot be listened on.
type InvalidPortError struct {
	Port int
}

// Error implements the [error] interface.
func (e InvalidPortError) Error() string {
	return "invalid port: " + strconv.Itoa(e.Port)
}

// NewTCPListener creates a new TCPListener with the given options.
func NewTCPListener(options ...TCPListenerOption) TCPListener {
	tcpLn := TCPListener{
		Addr: config.EmptyReader[string](),
	}

	for _, option := range options {
		option(&tcpLn)
	}

	return tcpLn
}

// Read opens the TCP listener. If no address was configured,
// it listens on [DefaultPort].
func (tcpLn TCPListener) Read(ctx context.Context) (config.Value[net.Listener], error) {
	addr, err := config.Read(ctx, tcpLn.Addr)
	if errors.Is(err, config.ErrValueNotSet) {
		addr, err = ":"+strconv.Itoa(DefaultPort), nil
	}
	if err != nil {
		return config.Value[net.Listener]{}, err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return config.Value[net.Listener]{}, err
	}

	return config.ValueOf(ln), nil
}

// Server holds the configuration for an HTTP server.
type Server struct {
	Listener          config.Reader[net.Listener]
	ReadTimeout       config.Reader[time.Duration]
	ReadHeaderTimeout config.Reader[time.Duration]
	WriteTimeout      config.Reader[time.Duration]
	IdleTimeout       config.Reader[time.Duration]
	ShutdownTimeout   config.Reader[time.Duration]
	MaxHeaderBytes    config.Reader[int]
	Logger            slog.Handler
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// ReadTimeout sets the maximum duration for reading the entire request,
// including the body. The default is 5 seconds.
func ReadTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.ReadTimeout = d
	}
}

// ReadTimeoutFromEnv reads HTTP_READ_TIMEOUT.
func ReadTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_READ_TIMEOUT"))
}

// ReadHeaderTimeout sets the maximum duration for reading
// request headers. The default is 2 seconds.
func ReadHeaderTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.ReadHeaderTimeout = d
	}
}

// ReadHeaderTimeoutFromEnv reads HTTP_READ_HEADER_TIMEOUT.
func ReadHeaderTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_READ_HEADER_TIMEOUT"))
}

// WriteTimeout sets the maximum duration before timing out
// writes of the response. The default is 10 seconds.
func WriteTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.WriteTimeout = d
	}
}

// WriteTimeoutFromEnv reads HTTP_WRITE_TIMEOUT.
func WriteTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_WRITE_TIMEOUT"))
}

// IdleTimeout sets the maximum duration to wait for the
// next request when keep-alives are enabled. The default is 120 seconds.
func IdleTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.IdleTimeout = d
	}
}

// IdleTimeoutFromEnv reads HTTP_IDLE_TIMEOUT.
func IdleTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_IDLE_TIMEOUT"))
}

// ShutdownTimeout bounds how long in-flight requests are given to
// complete once shutdown begins. The default is 10 seconds.
func ShutdownTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.ShutdownTimeout = d
	}
}

// ShutdownTimeoutFromEnv reads HTTP_SHUTDOWN_TIMEOUT.
func ShutdownTimeoutFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("HTTP_SHUTDOWN_TIMEOUT"))
}

// MaxHeaderBytes sets the maximum number of bytes the
// server will read parsing the request header's keys and values, including the
// request line. The default is 1048576 bytes (1 MB).
func MaxHeaderBytes(n config.Reader[int]) ServerOption {
	return func(srv *Server) {
		srv.MaxHeaderBytes = n
	}
}

// MaxHeaderBytesFromEnv reads HTTP_MAX_HEADER_BYTES.
func MaxHeaderBytesFromEnv() config.Reader[int] {
	return config.IntFromString(config.Env("HTTP_MAX_HEADER_BYTES"))
}

// Logger sets the handler used for server lifecycle and internal
// net/http error logs. Defaults to the OpenTelemetry bridged handler
// from [blogs.LogHandler].
func Logger(h slog.Handler) ServerOption {
	return func(srv *Server) {
		srv.Logger = h
	}
}

// NewServer creates a new Server with the given listener and options.
func NewServer(listener config.Reader[net.Listener], options ...ServerOption) Server {
	srv := Server{
		Listener:          listener,
		ReadTimeout:       config.EmptyReader[time.Duration](),
		ReadHeaderTimeout: config.EmptyReader[time.Duration](),
		WriteTimeout:      config.EmptyReader[time.Duration](),
		IdleTimeout:       config.EmptyReader[time.Duration](),
		ShutdownTimeout:   config.EmptyReader[time.Duration](),
		MaxHeaderBytes:    config.EmptyReader[int](),
		Logger:            blogs.LogHandler("github.com/z5labs/blogs/http"),
	}

	for _, option := range options {
		option(&srv)
	}

	return srv
}

// App is a runnable HTTP server.
type App struct {
	ls              net.Listener
	srv             *http.Server
	shutdownTimeout time.Duration
	log             *slog.Logger
}

// Addr returns the address the server is listening on.
func (a App) Addr() net.Addr {
	return a.ls.Addr()
}

// Run serves requests until ctx is cancelled, then shuts the server down
// gracefully. A clean shutdown returns nil.
func (a App) Run(ctx context.Context) error {
	pool := pool.New().WithContext(ctx).WithCancelOnError()

	pool.Go(func(ctx context.Context) error {
		a.log.InfoContext(ctx, "listening for requests", slog.String("addr", a.ls.Addr().String()))
		return a.srv.Serve(a.ls)
	})

	pool.Go(func(ctx context.Context) error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
		defer cancel()

		a.log.InfoContext(shutdownCtx, "shutting down")
		return a.srv.Shutdown(shutdownCtx)
	})

	err := pool.Wait()
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Build creates an app.Builder that serves the handler built by b.
// Unset configuration values fall back to the defaults documented on each option.
func Build(srv Server, b app.Builder[http.Handler]) app.Builder[App] {
	return app.Bind(b, func(h http.Handler) app.Builder[App] {
		return app.BuilderFunc[App](func(ctx context.Context) (App, error) {
			ln, err := config.Read(ctx, srv.Listener)
			if err != nil {
				return App{}, err
			}

			httpServer := &http.Server{
				Handler:           h,
				ReadTimeout:       config.MustOr(ctx, 5*time.Second, srv.ReadTimeout),
				ReadHeaderTimeout: config.MustOr(ctx, 2*time.Second, srv.ReadHeaderTimeout),
				WriteTimeout:      config.MustOr(ctx, 10*time.Second, srv.WriteTimeout),
				IdleTimeout:       config.MustOr(ctx, 120*time.Second, srv.IdleTimeout),
				MaxHeaderBytes:    config.MustOr(ctx, 1048576, srv.MaxHeaderBytes),
				ErrorLog:          slog.NewLogLogger(srv.Logger, slog.LevelError),
			}

			app := App{
				ls:              ln,
				srv:             httpServer,
				shutdownTimeout: config.MustOr(ctx, 10*time.Second, srv.ShutdownTimeout),
				log:             slog.New(srv.Logger),
			}

			return app, nil
		})
	})
}
