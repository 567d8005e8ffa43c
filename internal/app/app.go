// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app wires the blog store and endpoints into a runnable service.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/z5labs/blogs"
	"github.com/z5labs/blogs/app"
	"github.com/z5labs/blogs/config"
	"github.com/z5labs/blogs/health"
	"github.com/z5labs/blogs/internal/endpoint"
	"github.com/z5labs/blogs/internal/store"
	"github.com/z5labs/blogs/rest"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/z5labs/blogs/internal/app"

// Build creates the blogs service runtime.
//
// The readiness probe only reports healthy once the listener is bound
// and the service is about to accept requests. It reports unhealthy again
// as soon as the run context is cancelled, while in-flight requests are
// still being drained.
func Build(cfg Config) app.Builder[app.Runtime] {
	return app.WithHooks(func(ctx context.Context, hooks *app.HookRegistry) (app.Runtime, error) {
		log := blogs.Logger(instrumentationName)

		titles, err := seed(ctx, cfg.Seed)
		if err != nil {
			return nil, err
		}

		title, err := config.Read(ctx, config.Default("Blogs API", cfg.Title))
		if err != nil {
			return nil, err
		}
		version, err := config.Read(ctx, config.Default("v1.0.0", cfg.Version))
		if err != nil {
			return nil, err
		}

		blogStore := store.NewMemory(store.Seed(titles...))

		_, err = otel.Meter(instrumentationName).Int64ObservableGauge(
			"blogs.records",
			metric.WithDescription("Number of stored blogs."),
			metric.WithUnit("{blog}"),
			metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
				o.Observe(int64(blogStore.Len()))
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}

		readiness := &health.Binary{}

		api := rest.NewApi(
			title,
			version,
			rest.Readiness(readiness),
			endpoint.ListBlogs(blogStore),
			endpoint.GetBlog(blogStore),
			endpoint.AddBlog(blogStore),
			endpoint.UpdateBlog(blogStore),
			endpoint.DeleteBlog(blogStore),
		)

		rt, err := rest.Build(cfg.Server, app.Of(api)).Build(ctx)
		if err != nil {
			return nil, err
		}

		trackReadiness(hooks, readiness)

		hooks.OnPreRun(func(ctx context.Context) error {
			log.InfoContext(
				ctx,
				"blogs service ready",
				slog.String("addr", rt.Addr().String()),
				slog.Int("records", blogStore.Len()),
			)
			return nil
		})

		hooks.OnPostRun(func(ctx context.Context) error {
			log.InfoContext(ctx, "blogs service stopped", slog.Int("records", blogStore.Len()))
			return nil
		})

		return rt, nil
	})
}

// trackReadiness marks readiness healthy right before the runtime starts and
// unhealthy once its context is cancelled.
func trackReadiness(hooks *app.HookRegistry, readiness *health.Binary) {
	hooks.OnPreRun(func(ctx context.Context) error {
		readiness.MarkHealthy()
		context.AfterFunc(ctx, readiness.MarkUnhealthy)
		return nil
	})
}

func seed(ctx context.Context, r config.Reader[[]string]) ([]string, error) {
	titles, err := config.Read(ctx, r)
	if errors.Is(err, config.ErrValueNotSet) {
		return DefaultSeed, nil
	}
	if err != nil {
		return nil, err
	}
	return titles, nil
}
