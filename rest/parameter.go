// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
)

// Cookie declares a cookie parameter on an operation.
//
//	rest.Cookie("session", rest.Required())
func Cookie(name string, opts ...ParameterOption) OperationOption {
	return param(name, openapi3.ParameterInCookie, opts...)
}

// CookieValue returns the values of the named [Cookie] parameter.
func CookieValue(ctx context.Context, name string) []string {
	return paramValues(ctx, openapi3.ParameterInCookie, name)
}

// Header declares a header parameter on an operation.
//
//	rest.Header("X-Tenant", rest.Required())
func Header(name string, opts ...ParameterOption) OperationOption {
	return param(name, openapi3.ParameterInHeader, opts...)
}

// HeaderValue returns the values of the named [Header] parameter.
func HeaderValue(ctx context.Context, name string) []string {
	return paramValues(ctx, openapi3.ParameterInHeader, name)
}

// QueryParam declares a query parameter on an operation.
//
//	rest.QueryParam("page", rest.Regex(regexp.MustCompile(`^[0-9]+$`)))
func QueryParam(name string, opts ...ParameterOption) OperationOption {
	return param(name, openapi3.ParameterInQuery, opts...)
}

// QueryParamValue returns the values of the named [QueryParam].
func QueryParamValue(ctx context.Context, name string) []string {
	return paramValues(ctx, openapi3.ParameterInQuery, name)
}

// PathParamValue returns the value of a path parameter declared with [Path.Param].
// It is empty outside of an operation.
func PathParamValue(ctx context.Context, name string) string {
	vs := paramValues(ctx, openapi3.ParameterInPath, name)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

type paramKey struct {
	in   openapi3.ParameterIn
	name string
}

func paramValues(ctx context.Context, in openapi3.ParameterIn, name string) []string {
	vs, _ := ctx.Value(paramKey{in: in, name: name}).([]string)
	return vs
}

func extract(r *http.Request, in openapi3.ParameterIn, name string) []string {
	switch in {
	case openapi3.ParameterInPath:
		v := chi.URLParam(r, name)
		if v == "" {
			return nil
		}
		return []string{v}
	case openapi3.ParameterInQuery:
		return r.URL.Query()[name]
	case openapi3.ParameterInHeader:
		return r.Header.Values(name)
	case openapi3.ParameterInCookie:
		var vs []string
		for _, c := range r.CookiesNamed(name) {
			vs = append(vs, c.Value)
		}
		return vs
	default:
		panic("rest: unsupported parameter location: " + string(in))
	}
}

// ParameterOptions holds the definition of a single parameter.
type ParameterOptions struct {
	def    *openapi3.Parameter
	checks []func([]string) error
}

// ParameterOption configures a parameter created by [Cookie], [Header], [QueryParam] or [Path.Param].
type ParameterOption func(*ParameterOptions)

func param(name string, in openapi3.ParameterIn, opts ...ParameterOption) OperationOption {
	return func(oo *OperationOptions) {
		po := &ParameterOptions{
			def: &openapi3.Parameter{
				Name: name,
				In:   in,
			},
		}
		if in == openapi3.ParameterInPath {
			po.def.Required = ptr.Ref(true)
		}
		for _, opt := range opts {
			opt(po)
		}

		oo.parameters = append(oo.parameters, openapi3.ParameterOrRef{
			Parameter: po.def,
		})

		key := paramKey{in: in, name: name}
		checks := po.checks
		oo.transforms = append(oo.transforms, func(r *http.Request) (*http.Request, error) {
			vs := extract(r, in, name)
			for _, check := range checks {
				if err := check(vs); err != nil {
					return nil, BadRequestError{Cause: err}
				}
			}
			return r.WithContext(context.WithValue(r.Context(), key, vs)), nil
		})
	}
}

// MissingRequiredParameterError reports a [Required] parameter absent from
// the request. It is returned as a 400 Bad Request.
type MissingRequiredParameterError struct {
	Parameter string
	In        string
}

// Error implements the [error] interface.
func (e MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("missing required request parameter in %s: %s", e.In, e.Parameter)
}

// Required rejects requests which do not carry the parameter.
func Required() ParameterOption {
	return func(po *ParameterOptions) {
		po.def.Required = ptr.Ref(true)

		missing := MissingRequiredParameterError{
			Parameter: po.def.Name,
			In:        string(po.def.In),
		}
		po.checks = append(po.checks, func(vs []string) error {
			if len(vs) == 0 {
				return missing
			}
			return nil
		})
	}
}

// InvalidParameterValueError reports a parameter value rejected by [Regex].
// It is returned as a 400 Bad Request.
type InvalidParameterValueError struct {
	Parameter string
	In        string
}

// Error implements the [error] interface.
func (e InvalidParameterValueError) Error() string {
	return fmt.Sprintf("invalid parameter value in %s: %s", e.In, e.Parameter)
}

// Regex rejects requests where any value of the parameter does not match re.
// An absent parameter is accepted; combine with [Required] to reject it.
// The pattern is published on the parameter schema.
func Regex(re *regexp.Regexp) ParameterOption {
	return func(po *ParameterOptions) {
		if po.def.Schema == nil {
			po.def.Schema = &openapi3.SchemaOrRef{
				Schema: &openapi3.Schema{},
			}
		}
		po.def.Schema.Schema.
			WithType(openapi3.SchemaTypeString).
			WithPattern(re.String())

		invalid := InvalidParameterValueError{
			Parameter: po.def.Name,
			In:        string(po.def.In),
		}
		po.checks = append(po.checks, func(vs []string) error {
			for _, v := range vs {
				if !re.MatchString(v) {
					return invalid
				}
			}
			return nil
		})
	}
}
