// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
)

// HookFunc is a function executed around the inner runtime.
type HookFunc func(context.Context) error

// HookRegistry collects lifecycle hooks during application initialization.
// Hooks are executed in the order they are registered.
type HookRegistry struct {
	preRun  []HookFunc
	postRun []HookFunc
}

// OnPreRun registers a hook to be executed right before the inner runtime starts.
// If any pre-run hook fails, the runtime is not started and no further
// pre-run hooks are executed. Post-run hooks still run.
func (r *HookRegistry) OnPreRun(hook HookFunc) {
	r.preRun = append(r.preRun, hook)
}

// OnPostRun registers a hook to be executed after the inner runtime completes.
// All post-run hooks will run even if the runtime or previous hooks fail.
func (r *HookRegistry) OnPostRun(hook HookFunc) {
	r.postRun = append(r.postRun, hook)
}

type hookRuntime struct {
	inner   Runtime
	preRun  []HookFunc
	postRun []HookFunc
}

// Run executes the pre-run hooks, the inner runtime and then the post-run hooks.
// Errors from every stage are joined.
//
// Post-run hooks receive a context which is not cancelled along with ctx
// so they may still perform cleanup after a shutdown signal.
func (rt hookRuntime) Run(ctx context.Context) error {
	runtimeErr := rt.runInner(ctx)

	postCtx := context.WithoutCancel(ctx)

	var hookErrors error
	for _, hook := range rt.postRun {
		if err := hook(postCtx); err != nil {
			hookErrors = errors.Join(hookErrors, err)
		}
	}

	return errors.Join(runtimeErr, hookErrors)
}

func (rt hookRuntime) runInner(ctx context.Context) error {
	for _, hook := range rt.preRun {
		if err := hook(ctx); err != nil {
			return err
		}
	}
	return rt.inner.Run(ctx)
}

// WithHooks wraps a builder function with lifecycle hook support.
// The provided function receives a context and HookRegistry, allowing it to register
// hooks during initialization.
//
// Example usage:
//
//	builder := app.WithHooks(func(ctx context.Context, h *app.HookRegistry) (httpserver.App, error) {
//	    readiness := &health.Binary{}
//	    h.OnPreRun(func(ctx context.Context) error {
//	        readiness.MarkHealthy()
//	        return nil
//	    })
//	    h.OnPostRun(func(ctx context.Context) error {
//	        readiness.MarkUnhealthy()
//	        return nil
//	    })
//	    return buildApp(ctx, readiness)
//	})
func WithHooks[T Runtime](f func(context.Context, *HookRegistry) (T, error)) Builder[Runtime] {
	return BuilderFunc[Runtime](func(ctx context.Context) (Runtime, error) {
		registry := &HookRegistry{}

		inner, err := f(ctx, registry)
		if err != nil {
			return nil, err
		}

		return hookRuntime{
			inner:   inner,
			preRun:  registry.preRun,
			postRun: registry.postRun,
		}, nil
	})
}
