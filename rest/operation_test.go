// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type missingBookError struct {
	ID string
}

func (e missingBookError) Error() string {
	return fmt.Sprintf("book %s not found", e.ID)
}

func (e missingBookError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, e.Error())
}

func serveProducer(t *testing.T, p Producer[book], opts ...OperationOption) *httptest.Server {
	t.Helper()

	api := NewApi("Test", "v1",
		Operation(http.MethodGet, BasePath("/books").Param("id"), ProduceJson(p), opts...),
	)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return srv
}

func TestOperation_ServeHTTP(t *testing.T) {
	t.Run("will let errors write their own response", func(t *testing.T) {
		srv := serveProducer(t, ProducerFunc[book](func(ctx context.Context) (*book, error) {
			return nil, missingBookError{ID: PathParamValue(ctx, "id")}
		}))

		resp, err := http.Get(srv.URL + "/books/9")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		body := decodeErrorBody(t, resp)
		require.Equal(t, ErrorBody{StatusCode: 404, Error: "Not Found", Message: "book 9 not found"}, body)
	})

	t.Run("will find wrapped response writers", func(t *testing.T) {
		srv := serveProducer(t, ProducerFunc[book](func(ctx context.Context) (*book, error) {
			return nil, fmt.Errorf("lookup failed: %w", missingBookError{ID: "1"})
		}))

		resp, err := http.Get(srv.URL + "/books/1")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("will respond with a 500", func(t *testing.T) {
		testCases := []struct {
			Name     string
			Producer Producer[book]
		}{
			{
				Name: "if the handler returns an unknown error",
				Producer: ProducerFunc[book](func(ctx context.Context) (*book, error) {
					return nil, errors.New("boom")
				}),
			},
			{
				Name: "if the handler panics",
				Producer: ProducerFunc[book](func(ctx context.Context) (*book, error) {
					panic("boom")
				}),
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				srv := serveProducer(t, testCase.Producer)

				resp, err := http.Get(srv.URL + "/books/1")
				require.NoError(t, err)
				defer resp.Body.Close()

				require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

				body := decodeErrorBody(t, resp)
				require.Equal(t, "Internal Server Error", body.Error)
				require.Equal(t, "An internal server error occurred.", body.Message)
			})
		}
	})

	t.Run("will use a custom error handler", func(t *testing.T) {
		var handled error
		eh := ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
			handled = err
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		srv := serveProducer(
			t,
			ProducerFunc[book](func(ctx context.Context) (*book, error) {
				return nil, errors.New("unavailable")
			}),
			OnError(eh),
		)

		resp, err := http.Get(srv.URL + "/books/1")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		require.EqualError(t, handled, "unavailable")
	})
}
