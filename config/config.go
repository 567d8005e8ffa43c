// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides composable, lazily evaluated configuration values.
//
// A [Reader] produces a [Value] which may or may not be set. Readers are
// combined to express precedence, defaults, parsing and validation:
//
//	port := config.Validate(
//	    config.Or(
//	        config.Env("PORT"),
//	        config.DotEnv(".env", "PORT"),
//	        config.ReaderOf("3000"),
//	    ),
//	    "numeric",
//	)
//
// Nothing is read until [Read], [Must] or [MustOr] is called, which is
// typically done once while an application is being built.
package config

import (
	"context"
	"errors"
	"fmt"
)

// Value is the result of reading a config value.
// The zero value represents a value which has not been set.
type Value[T any] struct {
	v   T
	set bool
}

// ValueOf returns a [Value] which is set to v.
func ValueOf[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Value returns the underlying value and whether it was set.
func (v Value[T]) Value() (T, bool) {
	return v.v, v.set
}

// Reader reads a config [Value].
type Reader[T any] interface {
	Read(context.Context) (Value[T], error)
}

// ReaderFunc is an adapter to allow the use of ordinary functions as [Reader]s.
type ReaderFunc[T any] func(context.Context) (Value[T], error)

// Read implements the [Reader] interface.
func (f ReaderFunc[T]) Read(ctx context.Context) (Value[T], error) {
	return f(ctx)
}

// EmptyReader returns a [Reader] which never has a value set.
func EmptyReader[T any]() Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return Value[T]{}, nil
	})
}

// ReaderOf returns a [Reader] which always returns v.
func ReaderOf[T any](v T) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return ValueOf(v), nil
	})
}

// ErrValueNotSet is returned by [Read] and [Must] when the [Reader]
// did not produce a value.
var ErrValueNotSet = errors.New("config value not set")

// Read reads the value from r. If r produces no value, [ErrValueNotSet] is returned.
func Read[T any](ctx context.Context, r Reader[T]) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrValueNotSet
	}

	val, err := r.Read(ctx)
	if err != nil {
		return zero, err
	}

	v, ok := val.Value()
	if !ok {
		return zero, ErrValueNotSet
	}
	return v, nil
}

// ReadError wraps any failure encountered by [Must] or [MustOr].
type ReadError struct {
	Cause error
}

// Error implements the [error] interface.
func (e ReadError) Error() string {
	return fmt.Sprintf("failed to read config value: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e ReadError) Unwrap() error {
	return e.Cause
}

// Must is like [Read] but panics with a [ReadError] instead of returning an error.
//
// It is meant to be used inside builders where the panic is recovered and
// returned as an error, see the app package.
func Must[T any](ctx context.Context, r Reader[T]) T {
	v, err := Read(ctx, r)
	if err != nil {
		panic(ReadError{Cause: err})
	}
	return v
}

// MustOr returns def if r produces no value. Any error returned by r
// results in a panic with a [ReadError].
func MustOr[T any](ctx context.Context, def T, r Reader[T]) T {
	v, err := Read(ctx, r)
	if errors.Is(err, ErrValueNotSet) {
		return def
	}
	if err != nil {
		panic(ReadError{Cause: err})
	}
	return v
}

// Or returns the first set value from rs. Errors are returned immediately.
func Or[T any](rs ...Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		for _, r := range rs {
			if r == nil {
				continue
			}

			val, err := r.Read(ctx)
			if err != nil {
				return Value[T]{}, err
			}
			if _, ok := val.Value(); ok {
				return val, nil
			}
		}
		return Value[T]{}, nil
	})
}

// Default returns def whenever r does not produce a value.
func Default[T any](def T, r Reader[T]) Reader[T] {
	return Or(r, ReaderOf(def))
}

// Map transforms the value produced by r with f. Unset values are not passed to f.
func Map[A, B any](r Reader[A], f func(context.Context, A) (B, error)) Reader[B] {
	return ReaderFunc[B](func(ctx context.Context) (Value[B], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[B]{}, err
		}

		a, ok := val.Value()
		if !ok {
			return Value[B]{}, nil
		}

		b, err := f(ctx, a)
		if err != nil {
			return Value[B]{}, err
		}
		return ValueOf(b), nil
	})
}
