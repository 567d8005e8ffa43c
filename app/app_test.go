// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/z5labs/blogs/config"
)

func TestRun(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			builder := Build(func(ctx context.Context) (Runtime, error) {
				return nil, buildErr
			})

			err := Run(context.Background(), builder)
			require.ErrorIs(t, err, buildErr)
		})

		t.Run("if a required config value is missing", func(t *testing.T) {
			builder := Build(func(ctx context.Context) (Runtime, error) {
				_ = config.Must(ctx, config.EmptyReader[string]())
				return RuntimeFunc(func(ctx context.Context) error { return nil }), nil
			})

			err := Run(context.Background(), builder)
			require.Error(t, err)
		})

		t.Run("if the runtime fails", func(t *testing.T) {
			runErr := errors.New("failed to run")
			builder := Of[Runtime](RuntimeFunc(func(ctx context.Context) error {
				return runErr
			}))

			err := Run(context.Background(), builder)
			require.ErrorIs(t, err, runErr)
		})
	})
}

func TestBind(t *testing.T) {
	t.Run("will pass the first value to the binder", func(t *testing.T) {
		builder := Bind(Of(2), func(n int) Builder[int] {
			return Of(n * 21)
		})

		v, err := builder.Build(context.Background())
		require.NoError(t, err)
		require.Equal(t, 42, v)
	})

	t.Run("will not call the binder if the first builder fails", func(t *testing.T) {
		buildErr := errors.New("failed")
		called := false
		builder := Bind(
			Build(func(ctx context.Context) (int, error) { return 0, buildErr }),
			func(n int) Builder[int] {
				called = true
				return Of(n)
			},
		)

		_, err := builder.Build(context.Background())
		require.ErrorIs(t, err, buildErr)
		require.False(t, called)
	})
}

func TestLogError(t *testing.T) {
	t.Run("will not log a nil error", func(t *testing.T) {
		var buf bytes.Buffer
		LogError(slog.NewJSONHandler(&buf, nil), nil)
		require.Zero(t, buf.Len())
	})

	t.Run("will log the error", func(t *testing.T) {
		var buf bytes.Buffer
		LogError(slog.NewJSONHandler(&buf, nil), errors.New("boom"))
		require.Contains(t, buf.String(), "boom")
	})
}
