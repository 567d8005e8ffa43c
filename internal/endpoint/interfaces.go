// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"

	"github.com/z5labs/blogs/internal/store"
)

// Lister returns every stored blog.
type Lister interface {
	List(context.Context) []store.Blog
}

// Getter looks up a single blog by id.
type Getter interface {
	Get(context.Context, int64) (store.Blog, bool)
}

// Creator stores a new blog.
type Creator interface {
	Create(context.Context, string) store.Blog
}

// Updater replaces the title of an existing blog.
type Updater interface {
	Update(context.Context, int64, string) (store.Blog, bool)
}

// Deleter removes a blog.
type Deleter interface {
	Delete(context.Context, int64) bool
}
