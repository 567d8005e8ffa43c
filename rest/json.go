// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
	"github.com/z5labs/sdk-go/try"
)

// MaxJsonBodyBytes bounds the size of a JSON request body. Larger bodies
// are rejected with a [RequestBodyTooLargeError].
const MaxJsonBodyBytes = 1 << 20

const jsonMediaType = "application/json"

// Producer returns a response without reading a request body.
type Producer[T any] interface {
	Produce(context.Context) (*T, error)
}

// ProducerFunc is an adapter to allow the use of ordinary functions
// as [Producer]s.
type ProducerFunc[T any] func(context.Context) (*T, error)

// Produce implements the [Producer] interface.
func (f ProducerFunc[T]) Produce(ctx context.Context) (*T, error) {
	return f(ctx)
}

// NoBody is the [TypedRequest] of operations which ignore the request body.
type NoBody struct{}

// ReadRequest implements the [RequestReader] interface.
func (*NoBody) ReadRequest(ctx context.Context, r *http.Request) error {
	return nil
}

// Spec implements the [TypedRequest] interface. The operation documents no request body.
func (*NoBody) Spec() (openapi3.RequestBodyOrRef, error) {
	return openapi3.RequestBodyOrRef{}, nil
}

// JsonBody is a [TypedRequest] decoded from an application/json body.
//
// The body is validated against the JSON schema reflected from T before
// it is decoded. Schema constraints are declared with struct tags:
//
//	type CreateBook struct {
//	    _     struct{} `additionalProperties:"false"`
//	    Title string   `json:"title" required:"true" minLength:"1"`
//	}
type JsonBody[T any] struct {
	value T
}

// Spec implements the [TypedRequest] interface.
func (*JsonBody[T]) Spec() (openapi3.RequestBodyOrRef, error) {
	schema, err := openapiSchema[T]()
	if err != nil {
		return openapi3.RequestBodyOrRef{}, err
	}

	return openapi3.RequestBodyOrRef{
		RequestBody: &openapi3.RequestBody{
			Required: ptr.Ref(true),
			Content: map[string]openapi3.MediaType{
				jsonMediaType: {Schema: schema},
			},
		},
	}, nil
}

// ReadRequest implements the [RequestReader] interface.
func (b *JsonBody[T]) ReadRequest(ctx context.Context, r *http.Request) (err error) {
	defer try.Close(&err, r.Body)

	contentType := r.Header.Get("Content-Type")
	mediaType, _, perr := mime.ParseMediaType(contentType)
	if perr != nil || mediaType != jsonMediaType {
		return BadRequestError{
			Cause: InvalidContentTypeError{ContentType: contentType},
		}
	}

	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxJsonBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return RequestBodyTooLargeError{Limit: tooLarge.Limit}
	}
	if err != nil {
		return err
	}

	err = validateJson[T](raw)
	if err != nil {
		return err
	}

	err = json.Unmarshal(raw, &b.value)
	if err != nil {
		return BadRequestError{
			Cause: MalformedJsonError{Cause: err},
		}
	}
	return nil
}

// JsonReply is a [TypedResponse] written as a 200 application/json body.
type JsonReply[T any] struct {
	value *T
}

// Spec implements the [TypedResponse] interface.
func (*JsonReply[T]) Spec() (int, openapi3.ResponseOrRef, error) {
	schema, err := openapiSchema[T]()
	if err != nil {
		return 0, openapi3.ResponseOrRef{}, err
	}

	return http.StatusOK, openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: http.StatusText(http.StatusOK),
			Content: map[string]openapi3.MediaType{
				jsonMediaType: {Schema: schema},
			},
		},
	}, nil
}

// WriteResponse implements the [ResponseWriter] interface.
func (jr *JsonReply[T]) WriteResponse(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", jsonMediaType)
	w.WriteHeader(http.StatusOK)

	return json.NewEncoder(w).Encode(jr.value)
}

// JsonProducer serves a [Producer] as a JSON response. See [ProduceJson].
type JsonProducer[T any] struct {
	p Producer[T]
}

// ProduceJson serves p as an operation with no request body and a JSON response.
// It suits GET and DELETE operations.
//
//	p := rest.ProducerFunc[Book](func(ctx context.Context) (*Book, error) {
//	    return &Book{Title: "Dune"}, nil
//	})
//	rest.Operation(http.MethodGet, rest.BasePath("/book"), rest.ProduceJson(p))
func ProduceJson[T any](p Producer[T]) *JsonProducer[T] {
	return &JsonProducer[T]{p: p}
}

// Handle implements the [Handler] interface.
func (h *JsonProducer[T]) Handle(ctx context.Context, _ *NoBody) (*JsonReply[T], error) {
	resp, err := h.p.Produce(ctx)
	if err != nil {
		return nil, err
	}
	return &JsonReply[T]{value: resp}, nil
}

// JsonHandler serves a [Handler] with JSON request and response bodies. See [HandleJson].
type JsonHandler[Req, Resp any] struct {
	h Handler[Req, Resp]
}

// HandleJson serves h as an operation which reads and writes JSON.
// It suits POST and PUT operations.
//
//	h := rest.HandlerFunc[CreateBook, Book](func(ctx context.Context, req *CreateBook) (*Book, error) {
//	    return &Book{Title: req.Title}, nil
//	})
//	rest.Operation(http.MethodPost, rest.BasePath("/books"), rest.HandleJson(h))
func HandleJson[Req, Resp any](h Handler[Req, Resp]) *JsonHandler[Req, Resp] {
	return &JsonHandler[Req, Resp]{h: h}
}

// Handle implements the [Handler] interface.
func (h *JsonHandler[Req, Resp]) Handle(ctx context.Context, req *JsonBody[Req]) (*JsonReply[Resp], error) {
	resp, err := h.h.Handle(ctx, &req.value)
	if err != nil {
		return nil, err
	}
	return &JsonReply[Resp]{value: resp}, nil
}
