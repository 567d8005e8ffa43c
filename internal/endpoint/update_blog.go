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

// UpdateBlog creates the PUT /api/blogs/{id} endpoint.
func UpdateBlog(blogs Updater) rest.ApiOption {
	h := &updateBlogHandler{
		instrumentation: instrument(),
		blogs:           blogs,
	}

	return rest.Operation(
		http.MethodPut,
		blogPath(),
		rest.HandleJson(h),
		rest.Summary("Replace the title of a blog"),
		rest.Errors(http.StatusBadRequest, http.StatusNotFound),
	)
}

type updateBlogHandler struct {
	instrumentation
	blogs Updater
}

func (h *updateBlogHandler) Handle(ctx context.Context, req *BlogRequest) (*Blog, error) {
	spanCtx, span := h.tracer.Start(ctx, "updateBlogHandler.Handle")
	defer span.End()

	id, err := blogID(spanCtx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("blog.id", id))

	b, found := h.blogs.Update(spanCtx, id, req.Title)
	h.record(spanCtx, "update", attribute.Bool("found", found))
	if !found {
		h.log.InfoContext(spanCtx, "blog not found", slog.Int64("id", id))
		return nil, NotFoundError{ID: id}
	}

	h.log.InfoContext(spanCtx, "updated blog", slog.Int64("id", id))

	resp := blogOf(b)
	return &resp, nil
}
