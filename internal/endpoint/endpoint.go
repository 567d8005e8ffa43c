// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint implements the blog REST operations.
package endpoint

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/z5labs/blogs"
	"github.com/z5labs/blogs/internal/store"
	"github.com/z5labs/blogs/rest"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/z5labs/blogs/internal/endpoint"

var idPattern = regexp.MustCompile(`^[0-9]+$`)

func blogsPath() rest.Path {
	return rest.BasePath("/api/blogs")
}

func blogPath() rest.Path {
	return rest.BasePath("/api/blogs").Param("id", rest.Required(), rest.Regex(idPattern))
}

// Blog is the JSON representation of a stored blog.
type Blog struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func blogOf(b store.Blog) Blog {
	return Blog{ID: b.ID, Title: b.Title}
}

// BlogRequest is the body accepted when creating or updating a blog.
type BlogRequest struct {
	_     struct{} `additionalProperties:"false"`
	Title string   `json:"title" required:"true" minLength:"1" description:"Title of the blog"`
}

// NotFoundError is returned when no blog has the requested id.
type NotFoundError struct {
	ID int64
}

// Error implements the [error] interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("Blog with ID %d not found", e.ID)
}

// WriteHttpResponse implements the [rest.HttpResponseWriter] interface.
func (e NotFoundError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	rest.WriteError(w, http.StatusNotFound, e.Error())
}

// InvalidIDError is returned when a blog id is numeric but cannot be
// represented as a 64-bit integer.
type InvalidIDError struct {
	ID  string
	Err error
}

// Error implements the [error] interface.
func (e InvalidIDError) Error() string {
	return fmt.Sprintf("invalid blog id: %s", e.ID)
}

// Unwrap returns the underlying parse error.
func (e InvalidIDError) Unwrap() error {
	return e.Err
}

func blogID(ctx context.Context) (int64, error) {
	s := rest.PathParamValue(ctx, "id")

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, rest.BadRequestError{
			Cause: InvalidIDError{ID: s, Err: err},
		}
	}
	return id, nil
}

type instrumentation struct {
	tracer trace.Tracer
	log    *slog.Logger
	ops    metric.Int64Counter
}

func instrument() instrumentation {
	ops, err := otel.Meter(instrumentationName).Int64Counter(
		"blogs.operations",
		metric.WithDescription("Number of blog operations handled."),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		panic(err)
	}

	return instrumentation{
		tracer: otel.Tracer(instrumentationName),
		log:    blogs.Logger(instrumentationName),
		ops:    ops,
	}
}

func (i instrumentation) record(ctx context.Context, operation string, attrs ...attribute.KeyValue) {
	attrs = append(attrs, attribute.String("operation", operation))
	i.ops.Add(ctx, 1, metric.WithAttributes(attrs...))
}
