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

// AddBlog creates the POST /api/blogs endpoint.
func AddBlog(blogs Creator) rest.ApiOption {
	h := &addBlogHandler{
		instrumentation: instrument(),
		blogs:           blogs,
	}

	return rest.Operation(
		http.MethodPost,
		blogsPath(),
		rest.HandleJson(h),
		rest.Summary("Create a blog"),
		rest.Errors(http.StatusBadRequest),
	)
}

type addBlogHandler struct {
	instrumentation
	blogs Creator
}

func (h *addBlogHandler) Handle(ctx context.Context, req *BlogRequest) (*Blog, error) {
	spanCtx, span := h.tracer.Start(ctx, "addBlogHandler.Handle")
	defer span.End()

	b := h.blogs.Create(spanCtx, req.Title)
	span.SetAttributes(attribute.Int64("blog.id", b.ID))

	h.record(spanCtx, "add")
	h.log.InfoContext(spanCtx, "created blog", slog.Int64("id", b.ID))

	resp := blogOf(b)
	return &resp, nil
}
