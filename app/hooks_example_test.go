// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app_test

import (
	"context"
	"fmt"

	"github.com/z5labs/blogs/app"
	"github.com/z5labs/blogs/health"
)

func Example_withHooks() {
	builder := app.WithHooks(func(ctx context.Context, h *app.HookRegistry) (app.Runtime, error) {
		readiness := &health.Binary{}

		h.OnPreRun(func(ctx context.Context) error {
			readiness.MarkHealthy()
			return nil
		})

		h.OnPostRun(func(ctx context.Context) error {
			readiness.MarkUnhealthy()

			healthy, _ := readiness.Healthy(ctx)
			fmt.Println("ready after shutdown:", healthy)
			return nil
		})

		return app.RuntimeFunc(func(ctx context.Context) error {
			healthy, _ := readiness.Healthy(ctx)
			fmt.Println("ready while serving:", healthy)
			return nil
		}), nil
	})

	_ = app.Run(context.Background(), builder)

	// Output:
	// ready while serving: true
	// ready after shutdown: false
}
