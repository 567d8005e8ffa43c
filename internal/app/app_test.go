// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/z5labs/blogs/app"
	"github.com/z5labs/blogs/config"
	"github.com/z5labs/blogs/health"
	httpserver "github.com/z5labs/blogs/http"
	"github.com/z5labs/blogs/internal/endpoint"
	"github.com/z5labs/blogs/otel"

	"github.com/stretchr/testify/require"
)

func localServer(t *testing.T) (httpserver.Server, string) {
	t.Helper()

	ls, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ls.Close() })

	return httpserver.NewServer(config.ReaderOf(ls)), "http://" + ls.Addr().String()
}

func TestBuild(t *testing.T) {
	t.Run("will serve the seeded blogs once ready", func(t *testing.T) {
		srv, baseURL := localServer(t)

		rt, err := Build(Config{
			Seed:   config.ReaderOf([]string{"Dune", "Hyperion"}),
			Server: srv,
		}).Build(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- rt.Run(ctx)
		}()

		require.Eventually(t, func() bool {
			resp, err := http.Get(baseURL + "/health/readiness")
			if err != nil {
				return false
			}
			resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 10*time.Millisecond)

		resp, err := http.Get(baseURL + "/api/blogs")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var blogs []endpoint.Blog
		err = json.NewDecoder(resp.Body).Decode(&blogs)
		require.NoError(t, err)
		require.Equal(t, []endpoint.Blog{
			{ID: 1, Title: "Dune"},
			{ID: 2, Title: "Hyperion"},
		}, blogs)

		cancel()
		require.NoError(t, <-errCh)
	})

	t.Run("will seed the default titles", func(t *testing.T) {
		t.Run("if no seed is configured", func(t *testing.T) {
			srv, baseURL := localServer(t)

			rt, err := Build(Config{Server: srv}).Build(context.Background())
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- rt.Run(ctx)
			}()

			var blogs []endpoint.Blog
			require.Eventually(t, func() bool {
				resp, err := http.Get(baseURL + "/api/blogs")
				if err != nil {
					return false
				}
				defer resp.Body.Close()
				return json.NewDecoder(resp.Body).Decode(&blogs) == nil
			}, 5*time.Second, 10*time.Millisecond)

			require.Len(t, blogs, len(DefaultSeed))
			for i, title := range DefaultSeed {
				require.Equal(t, endpoint.Blog{ID: int64(i + 1), Title: title}, blogs[i])
			}

			cancel()
			require.NoError(t, <-errCh)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the seed file cannot be read", func(t *testing.T) {
			srv, _ := localServer(t)

			_, err := Build(Config{
				Seed:   SeedFile(config.ReaderOf(filepath.Join(t.TempDir(), "missing.yaml"))),
				Server: srv,
			}).Build(context.Background())
			require.ErrorIs(t, err, os.ErrNotExist)
		})
	})
}

func TestTrackReadiness(t *testing.T) {
	t.Run("will report unhealthy while the runtime is still draining", func(t *testing.T) {
		readiness := &health.Binary{}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var serving bool
		builder := app.WithHooks(func(ctx context.Context, hooks *app.HookRegistry) (app.Runtime, error) {
			trackReadiness(hooks, readiness)

			return app.RuntimeFunc(func(ctx context.Context) error {
				serving, _ = readiness.Healthy(ctx)

				cancel()
				<-ctx.Done()

				require.Eventually(t, func() bool {
					healthy, _ := readiness.Healthy(ctx)
					return !healthy
				}, 5*time.Second, time.Millisecond)
				return nil
			}), nil
		})

		rt, err := builder.Build(ctx)
		require.NoError(t, err)

		healthy, _ := readiness.Healthy(ctx)
		require.False(t, healthy)

		err = rt.Run(ctx)
		require.NoError(t, err)
		require.True(t, serving)
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSDK(t *testing.T) {
	t.Run("will write every service log to stdout", func(t *testing.T) {
		for _, key := range []string{
			"OTEL_EXPORTER_OTLP_ENDPOINT",
			"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT",
			"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT",
			"OTEL_EXPORTER_OTLP_LOGS_ENDPOINT",
		} {
			unsetenv(t, key)
		}

		var stdout syncBuffer
		srv, baseURL := localServer(t)

		rt, err := otel.Build(
			SDK(&stdout, slog.LevelInfo),
			Build(Config{Server: srv}),
		).Build(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- rt.Run(ctx)
		}()

		require.Eventually(t, func() bool {
			resp, err := http.Get(baseURL + "/health/readiness")
			if err != nil {
				return false
			}
			resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 10*time.Millisecond)

		cancel()
		require.NoError(t, <-errCh)

		logs := stdout.String()
		require.Contains(t, logs, `"msg":"blogs service ready"`)
		require.Contains(t, logs, `"msg":"listening for requests"`)
		require.Contains(t, logs, `"msg":"shutting down"`)
		require.Contains(t, logs, `"msg":"blogs service stopped"`)
	})
}
