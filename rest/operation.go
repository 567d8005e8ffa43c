// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// OperationOptions is the state an [OperationOption] applies itself to.
type OperationOptions struct {
	summary    string
	parameters []openapi3.ParameterOrRef
	transforms []func(*http.Request) (*http.Request, error)
	errHandler ErrorHandler
	errors     []int
}

// OperationOption declares parameters, documentation or error handling for an [Operation].
type OperationOption func(*OperationOptions)

// OnError replaces the [ErrorHandler] of an operation. The default logs the
// error and writes an [ErrorBody].
func OnError(eh ErrorHandler) OperationOption {
	return func(oo *OperationOptions) {
		oo.errHandler = eh
	}
}

// Summary sets the short description of the operation in the OpenAPI document.
func Summary(s string) OperationOption {
	return func(oo *OperationOptions) {
		oo.summary = s
	}
}

// Errors documents the error status codes an operation may respond with.
// Each is described with the [ErrorBody] schema.
func Errors(statuses ...int) OperationOption {
	return func(oo *OperationOptions) {
		oo.errors = append(oo.errors, statuses...)
	}
}

// Handler maps a decoded request to a response.
type Handler[Req, Resp any] interface {
	Handle(context.Context, *Req) (*Resp, error)
}

// HandlerFunc is an adapter to allow the use of ordinary functions
// as [Handler]s.
type HandlerFunc[Req, Resp any] func(context.Context, *Req) (*Resp, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req *Req) (*Resp, error) {
	return f(ctx, req)
}

// RequestReader is implemented by pointers to request types which decode
// themselves from a [http.Request].
type RequestReader[T any] interface {
	*T

	ReadRequest(context.Context, *http.Request) error
}

// TypedRequest is a [RequestReader] which documents its request body.
type TypedRequest[T any] interface {
	RequestReader[T]

	Spec() (openapi3.RequestBodyOrRef, error)
}

// ResponseWriter is implemented by pointers to response types which encode
// themselves onto a [http.ResponseWriter].
type ResponseWriter[T any] interface {
	*T

	WriteResponse(context.Context, http.ResponseWriter) error
}

// TypedResponse is a [ResponseWriter] which documents its status code and body.
type TypedResponse[T any] interface {
	ResponseWriter[T]

	Spec() (int, openapi3.ResponseOrRef, error)
}

type operation[I, O any, Req TypedRequest[I], Resp TypedResponse[O]] struct {
	tracer     trace.Tracer
	errHandler ErrorHandler
	transforms []func(*http.Request) (*http.Request, error)
	handler    Handler[I, O]
}

// Operation registers h at method and path on the [Api] and documents it
// in the OpenAPI document. Path parameters declared with [Path.Param] are
// validated before the request body is read.
//
// Invalid operation definitions panic when the [Api] is constructed.
func Operation[I, O any, Req TypedRequest[I], Resp TypedResponse[O]](method string, path Path, h Handler[I, O], opts ...OperationOption) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		var pathOpts []OperationOption
		for _, s := range path.params() {
			pathOpts = append(pathOpts, param(s.name, openapi3.ParameterInPath, s.opts...))
		}

		oo := &OperationOptions{
			errHandler: defaultErrorHandler(ao.logHandler),
		}
		for _, opt := range append(pathOpts, opts...) {
			opt(oo)
		}

		op, err := describe[Req, Resp](oo)
		if err != nil {
			panic(err)
		}

		endpoint := path.String()

		err = ao.def.AddOperation(method, endpoint, op)
		if err != nil {
			panic(err)
		}

		ao.mux.Method(method, endpoint, otelhttp.WithRouteTag(endpoint, &operation[I, O, Req, Resp]{
			tracer:     otel.Tracer("github.com/z5labs/blogs/rest"),
			errHandler: oo.errHandler,
			transforms: oo.transforms,
			handler:    h,
		}))
	})
}

type requestSpec interface {
	Spec() (openapi3.RequestBodyOrRef, error)
}

type responseSpec interface {
	Spec() (int, openapi3.ResponseOrRef, error)
}

func describe[Req requestSpec, Resp responseSpec](oo *OperationOptions) (openapi3.Operation, error) {
	var req Req
	body, err := req.Spec()
	if err != nil {
		return openapi3.Operation{}, err
	}

	var resp Resp
	status, respSpec, err := resp.Spec()
	if err != nil {
		return openapi3.Operation{}, err
	}

	responses := map[string]openapi3.ResponseOrRef{
		strconv.Itoa(status): respSpec,
	}
	if len(oo.errors) > 0 {
		errSchema, err := openapiSchema[ErrorBody]()
		if err != nil {
			return openapi3.Operation{}, err
		}

		for _, status := range oo.errors {
			responses[strconv.Itoa(status)] = openapi3.ResponseOrRef{
				Response: &openapi3.Response{
					Description: http.StatusText(status),
					Content: map[string]openapi3.MediaType{
						jsonMediaType: {Schema: errSchema},
					},
				},
			}
		}
	}

	op := openapi3.Operation{
		Responses: openapi3.Responses{
			MapOfResponseOrRefValues: responses,
		},
		Parameters: oo.parameters,
	}
	if oo.summary != "" {
		op.Summary = &oo.summary
	}
	if body.RequestBody != nil {
		op.RequestBody = &body
	}
	return op, nil
}

func (o *operation[I, O, Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var err error
	defer func() {
		if err == nil {
			return
		}

		o.errHandler.OnError(r.Context(), w, err)
	}()
	defer try.Recover(&err)

	for _, transform := range o.transforms {
		tr, terr := transform(r)
		if terr != nil {
			err = terr
			return
		}
		r = tr
	}

	ctx := r.Context()

	req, err := o.readRequest(ctx, r)
	if err != nil {
		return
	}

	resp, err := o.handler.Handle(ctx, &req)
	if err != nil {
		return
	}

	err = o.writeResponse(ctx, w, resp)
}

func (o *operation[I, O, Req, Resp]) readRequest(ctx context.Context, r *http.Request) (I, error) {
	spanCtx, span := o.tracer.Start(ctx, "operation.readRequest")
	defer span.End()

	var req I
	err := Req(&req).ReadRequest(spanCtx, r)
	if err != nil {
		span.RecordError(err)
		return req, err
	}

	return req, nil
}

func (o *operation[I, O, Req, Resp]) writeResponse(ctx context.Context, w http.ResponseWriter, resp Resp) error {
	spanCtx, span := o.tracer.Start(ctx, "operation.writeResponse")
	defer span.End()

	return resp.WriteResponse(spanCtx, w)
}
