// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/z5labs/blogs/rest"

	"go.opentelemetry.io/otel/attribute"
)

// DeleteResponse confirms a delete.
type DeleteResponse struct {
	Msg string `json:"msg"`
}

// DeleteBlog creates the DELETE /api/blogs/{id} endpoint.
//
// Deleting an id which does not exist still succeeds.
func DeleteBlog(blogs Deleter) rest.ApiOption {
	h := &deleteBlogHandler{
		instrumentation: instrument(),
		blogs:           blogs,
	}

	return rest.Operation(
		http.MethodDelete,
		blogPath(),
		rest.ProduceJson(h),
		rest.Summary("Delete a blog"),
		rest.Errors(http.StatusBadRequest),
	)
}

type deleteBlogHandler struct {
	instrumentation
	blogs Deleter
}

func (h *deleteBlogHandler) Produce(ctx context.Context) (*DeleteResponse, error) {
	spanCtx, span := h.tracer.Start(ctx, "deleteBlogHandler.Produce")
	defer span.End()

	id, err := blogID(spanCtx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("blog.id", id))

	deleted := h.blogs.Delete(spanCtx, id)
	h.record(spanCtx, "delete", attribute.Bool("found", deleted))
	h.log.InfoContext(spanCtx, "deleted blog", slog.Int64("id", id), slog.Bool("existed", deleted))

	return &DeleteResponse{
		Msg: fmt.Sprintf("Blog with ID %d is deleted", id),
	}, nil
}
