// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/z5labs/blogs/app"
	blogs "github.com/z5labs/blogs/internal/app"
	"github.com/z5labs/blogs/otel"
)

func main() {
	sdk := blogs.SDK(os.Stdout, slog.LevelInfo)

	err := app.Run(context.Background(), otel.Build(sdk, blogs.Build(blogs.ConfigFromEnv())))
	if err != nil {
		app.LogError(slog.NewJSONHandler(os.Stderr, nil), err)
		os.Exit(1)
	}
}
