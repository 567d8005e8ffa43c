// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"net/http"

	"github.com/z5labs/blogs/app"
	httpserver "github.com/z5labs/blogs/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Build serves the [Api] built by api with srv. Every request is
// instrumented with OpenTelemetry before it reaches the router.
func Build(srv httpserver.Server, api app.Builder[*Api]) app.Builder[httpserver.App] {
	handler := app.Bind(api, func(a *Api) app.Builder[http.Handler] {
		return app.BuilderFunc[http.Handler](func(ctx context.Context) (http.Handler, error) {
			return otelhttp.NewHandler(a, "rest"), nil
		})
	})

	return httpserver.Build(srv, handler)
}
