// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorBody is the JSON body written for every error response.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// WriteError writes an [ErrorBody] with the given status code and message.
// The error field is always the standard text for status.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorBody{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// HttpResponseWriter is an interface for errors that can write their own HTTP responses.
// When an error implementing this interface is returned from an operation handler,
// its WriteHttpResponse method is called to generate the HTTP response.
//
// This allows custom error types to control status codes and response bodies.
type HttpResponseWriter interface {
	WriteHttpResponse(context.Context, http.ResponseWriter)
}

// ErrorHandler handles errors that occur during request processing.
// The default error handler logs errors and returns appropriate HTTP status codes.
//
// Custom error handlers can be configured per-operation using [OnError].
type ErrorHandler interface {
	OnError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc is a function adapter that implements [ErrorHandler].
//
// Example:
//
//	handler := rest.ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
//	    rest.WriteError(w, http.StatusServiceUnavailable, "try again later")
//	})
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

// OnError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

const internalServerErrorMessage = "An internal server error occurred."

func defaultErrorHandler(h slog.Handler) ErrorHandlerFunc {
	log := slog.New(h)

	return func(ctx context.Context, w http.ResponseWriter, err error) {
		var hrw HttpResponseWriter
		if errors.As(err, &hrw) {
			log.WarnContext(
				ctx,
				"sending error response",
				slog.String("request_id", RequestIDValue(ctx)),
				slog.Any("error", err),
			)

			hrw.WriteHttpResponse(ctx, w)
			return
		}

		log.ErrorContext(
			ctx,
			"unexpected error while handling request",
			slog.String("request_id", RequestIDValue(ctx)),
			slog.Any("error", err),
		)

		WriteError(w, http.StatusInternalServerError, internalServerErrorMessage)
	}
}

// BadRequestError represents a 400 Bad Request error.
// It wraps an underlying cause (typically parameter or body validation errors)
// and implements [HttpResponseWriter] to return a 400 status code along with
// the cause as the message.
type BadRequestError struct {
	Cause error
}

// Error implements the [error] interface.
func (e BadRequestError) Error() string {
	return fmt.Sprintf("bad request error: %v", e.Cause)
}

// Unwrap returns the underlying cause of the bad request.
func (e BadRequestError) Unwrap() error {
	return e.Cause
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e BadRequestError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	msg := http.StatusText(http.StatusBadRequest)
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	WriteError(w, http.StatusBadRequest, msg)
}

// InvalidContentTypeError is returned when a request body is sent with
// a content type the operation does not accept.
type InvalidContentTypeError struct {
	ContentType string
}

// Error implements the [error] interface.
func (e InvalidContentTypeError) Error() string {
	return fmt.Sprintf("invalid content type for request: %q", e.ContentType)
}

// RequestBodyTooLargeError is returned when a request body exceeds
// the number of bytes an operation accepts. It is written as a
// 413 Request Entity Too Large.
type RequestBodyTooLargeError struct {
	Limit int64
}

// Error implements the [error] interface.
func (e RequestBodyTooLargeError) Error() string {
	return fmt.Sprintf("request body must not exceed %d bytes", e.Limit)
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e RequestBodyTooLargeError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	WriteError(w, http.StatusRequestEntityTooLarge, e.Error())
}

// MalformedJsonError is returned when a request body is not valid JSON.
type MalformedJsonError struct {
	Cause error
}

// Error implements the [error] interface.
func (e MalformedJsonError) Error() string {
	return fmt.Sprintf("malformed json request body: %v", e.Cause)
}

// Unwrap returns the underlying decoding error.
func (e MalformedJsonError) Unwrap() error {
	return e.Cause
}

// SchemaViolationError is returned when a request body does not satisfy
// its JSON schema. Each violation names the offending location in the body.
type SchemaViolationError struct {
	Violations []string
}

// Error implements the [error] interface.
func (e SchemaViolationError) Error() string {
	return strings.Join(e.Violations, "; ")
}
