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
)

// ListBlogs creates the GET /api/blogs endpoint.
func ListBlogs(blogs Lister) rest.ApiOption {
	h := &listBlogsHandler{
		instrumentation: instrument(),
		blogs:           blogs,
	}

	return rest.Operation(
		http.MethodGet,
		blogsPath(),
		rest.ProduceJson(h),
		rest.Summary("List all blogs"),
	)
}

type listBlogsHandler struct {
	instrumentation
	blogs Lister
}

func (h *listBlogsHandler) Produce(ctx context.Context) (*[]Blog, error) {
	spanCtx, span := h.tracer.Start(ctx, "listBlogsHandler.Produce")
	defer span.End()

	stored := h.blogs.List(spanCtx)

	resp := make([]Blog, 0, len(stored))
	for _, b := range stored {
		resp = append(resp, blogOf(b))
	}

	h.record(spanCtx, "list")
	h.log.DebugContext(spanCtx, "listed blogs", slog.Int("count", len(resp)))
	return &resp, nil
}
