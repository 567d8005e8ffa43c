// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/z5labs/blogs"
	"github.com/z5labs/blogs/health"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/openapi-go/openapi3"
)

// ApiOptions is the state an [ApiOption] applies itself to.
type ApiOptions struct {
	mux        *chi.Mux
	def        *openapi3.Spec
	logHandler slog.Handler
}

// ApiOption registers routes on an [Api] or documents them.
// See [Operation], [Readiness], [Liveness], [NotFound] and [MethodNotAllowed].
type ApiOption interface {
	ApplyApiOption(*ApiOptions)
}

type apiOptionFunc func(*ApiOptions)

func (f apiOptionFunc) ApplyApiOption(mo *ApiOptions) {
	f(mo)
}

// Readiness serves m at GET /health/readiness, replacing the default
// probe which is always healthy.
func Readiness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.mux.Method(http.MethodGet, "/health/readiness", healthHandler{
			monitor: m,
			log:     slog.New(ao.logHandler),
		})
	})
}

// Liveness serves m at GET /health/liveness.
func Liveness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.mux.Method(http.MethodGet, "/health/liveness", healthHandler{
			monitor: m,
			log:     slog.New(ao.logHandler),
		})
	})
}

type healthHandler struct {
	monitor health.Monitor
	log     *slog.Logger
}

func (h healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	healthy, err := h.monitor.Healthy(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to check health", slog.Any("error", err))
	}
	if err != nil || !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// NotFound replaces the handler for unmatched routes, which writes a 404 [ErrorBody].
func NotFound(h http.Handler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.mux.NotFound(h.ServeHTTP)
	})
}

// MethodNotAllowed replaces the handler for matched routes requested with an
// unregistered method, which writes a 405 [ErrorBody].
func MethodNotAllowed(h http.Handler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.mux.MethodNotAllowed(h.ServeHTTP)
	})
}

// Api is a [http.Handler] which documents its own operations.
//
// Besides the registered operations it serves:
//   - GET /openapi.json, the OpenAPI 3.0 document
//   - GET /health/liveness and GET /health/readiness
//
// Unmatched requests are answered with a JSON [ErrorBody] and every
// response carries an X-Request-ID header.
type Api struct {
	router *chi.Mux
}

// NewApi creates an [Api] whose OpenAPI document is titled title at version.
//
//	api := rest.NewApi(
//	    "Bookstore API",
//	    "v2.1.0",
//	    rest.Operation(http.MethodGet, rest.BasePath("/books"), rest.ProduceJson(listBooks)),
//	    rest.Readiness(readiness),
//	)
func NewApi(title, version string, opts ...ApiOption) *Api {
	logHandler := blogs.LogHandler("github.com/z5labs/blogs/rest")
	log := slog.New(logHandler)

	mux := chi.NewMux()
	mux.Use(requestID)
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "Route "+r.Method+":"+r.URL.Path+" not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" is not allowed for "+r.URL.Path)
	})
	mux.Method(http.MethodGet, "/health/liveness", healthHandler{monitor: health.Always, log: log})
	mux.Method(http.MethodGet, "/health/readiness", healthHandler{monitor: health.Always, log: log})

	ao := &ApiOptions{
		mux: mux,
		def: &openapi3.Spec{
			Openapi: "3.0.3",
			Info: openapi3.Info{
				Title:   title,
				Version: version,
			},
		},
		logHandler: logHandler,
	}
	for _, opt := range opts {
		opt.ApplyApiOption(ao)
	}

	doc, err := json.Marshal(ao.def)
	if err != nil {
		panic(err)
	}
	ao.mux.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", jsonMediaType)
		w.Write(doc)
	})

	return &Api{
		router: ao.mux,
	}
}

// ServeHTTP implements the [http.Handler] interface.
func (api *Api) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	api.router.ServeHTTP(w, req)
}
