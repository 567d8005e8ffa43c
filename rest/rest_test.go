// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/z5labs/blogs/app"
	"github.com/z5labs/blogs/config"
	httpserver "github.com/z5labs/blogs/http"

	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Run("will serve the api", func(t *testing.T) {
		srv := httpserver.NewServer(
			httpserver.NewTCPListener(httpserver.Addr(config.ReaderOf("127.0.0.1:0"))),
		)

		rt, err := Build(srv, app.Of(NewApi("Test", "v1"))).Build(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- rt.Run(ctx)
		}()

		var resp *http.Response
		require.Eventually(t, func() bool {
			resp, err = http.Get("http://" + rt.Addr().String() + "/health/liveness")
			return err == nil
		}, 5*time.Second, 10*time.Millisecond)
		resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get(RequestIDHeader))

		cancel()
		require.NoError(t, <-errCh)
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the api fails to build", func(t *testing.T) {
			buildErr := errors.New("no api")

			srv := httpserver.NewServer(
				httpserver.NewTCPListener(httpserver.Addr(config.ReaderOf("127.0.0.1:0"))),
			)

			_, err := Build(srv, app.BuilderFunc[*Api](func(ctx context.Context) (*Api, error) {
				return nil, buildErr
			})).Build(context.Background())
			require.ErrorIs(t, err, buildErr)
		})
	})
}
