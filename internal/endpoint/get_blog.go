// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/z5labs/blogs/rest"

	"go.opentelemetry.io/otel/attribute"
)

// GetBlog creates the GET /api/blogs/{id} endpoint.
func GetBlog(blogs Getter) rest.ApiOption {
	h := &getBlogHandler{
		instrumentation: instrument(),
		blogs:           blogs,
	}

	return rest.Operation(
		http.MethodGet,
		blogPath(),
		rest.ProduceJson(h),
		rest.Summary("Get a blog by id"),
		rest.Errors(http.StatusBadRequest, http.StatusNotFound),
	)
}

type getBlogHandler struct {
	instrumentation
	blogs Getter
}

func (h *getBlogHandler) Produce(ctx context.Context) (*Blog, error) {
	spanCtx, span := h.tracer.Start(ctx, "getBlogHandler.Produce")
	defer span.End()

	id, err := blogID(spanCtx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("blog.id", id))

	b, found := h.blogs.Get(spanCtx, id)
	h.record(spanCtx, "get", attribute.Bool("found", found))
	if !found {
		h.log.InfoContext(spanCtx, "blog not found", slog.Int64("id", id))
		return nil, NotFoundError{ID: id}
	}

	resp := blogOf(b)
	return &resp, nil
}
