// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest provides a framework for building OpenAPI-compliant RESTful HTTP applications.
//
// # Overview
//
// The rest package simplifies building REST APIs by providing:
//   - Automatic OpenAPI 3.0 schema generation
//   - Type-safe request/response handling
//   - JSON Schema validation of request bodies
//   - Parameter validation (headers, query params, cookies, path params)
//   - Uniform JSON error bodies
//   - Health check endpoints (liveness/readiness)
//   - OpenTelemetry instrumentation
//
// # Quick Start
//
// Creating a basic API:
//
//	api := rest.NewApi("My API", "v1.0.0")
//	http.ListenAndServe(":8080", api)
//
// The API automatically provides:
//   - OpenAPI schema at GET /openapi.json
//   - Health endpoints at GET /health/liveness and GET /health/readiness
//
// # Adding Operations
//
// Use the Operation function to register HTTP operations:
//
//	getBook := rest.Operation(
//	    http.MethodGet,
//	    rest.BasePath("/books").Param("id", rest.Regex(digits)),
//	    rest.ProduceJson(getBookHandler),
//	)
//	api := rest.NewApi("Bookstore", "v1.0.0", getBook)
//
// # Request Validation
//
// JSON request bodies are checked against the schema reflected from
// the request type before the handler runs:
//
//	type CreateBook struct {
//	    _     struct{} `additionalProperties:"false"`
//	    Title string   `json:"title" required:"true" minLength:"1"`
//	}
//
// Violations are answered with a 400 [ErrorBody] naming the failing location.
//
// # Error Handling
//
// Errors implementing [HttpResponseWriter] control the HTTP response:
//
//	type NotFoundError struct{ ID int64 }
//	func (e NotFoundError) Error() string { return "not found" }
//	func (e NotFoundError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
//	    rest.WriteError(w, http.StatusNotFound, e.Error())
//	}
//
// Any other error is answered with a 500 [ErrorBody].
//
// # Running
//
// Use [Build] to serve an [Api] with the http package:
//
//	srv := httpserver.NewServer(httpserver.NewTCPListener())
//	app.Run(ctx, rest.Build(srv, app.Of(api)))
package rest
