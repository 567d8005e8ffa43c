// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// IntFromString parses the string produced by r as a base 10 int.
func IntFromString(r Reader[string]) Reader[int] {
	return Map(r, func(ctx context.Context, s string) (int, error) {
		return strconv.Atoi(s)
	})
}

// Int64FromString parses the string produced by r as a base 10 int64.
func Int64FromString(r Reader[string]) Reader[int64] {
	return Map(r, func(ctx context.Context, s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// Float64FromString parses the string produced by r as a float64.
func Float64FromString(r Reader[string]) Reader[float64] {
	return Map(r, func(ctx context.Context, s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// BoolFromString parses the string produced by r with [strconv.ParseBool].
func BoolFromString(r Reader[string]) Reader[bool] {
	return Map(r, func(ctx context.Context, s string) (bool, error) {
		return strconv.ParseBool(s)
	})
}

// DurationFromString parses the string produced by r with [time.ParseDuration].
func DurationFromString(r Reader[string]) Reader[time.Duration] {
	return Map(r, func(ctx context.Context, s string) (time.Duration, error) {
		return time.ParseDuration(s)
	})
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// InvalidValueError is returned by [Validate] when a value does not satisfy its constraints.
type InvalidValueError struct {
	Constraints string
	Cause       error
}

// Error implements the [error] interface.
func (e InvalidValueError) Error() string {
	return fmt.Sprintf("config value does not satisfy %q: %v", e.Constraints, e.Cause)
}

// Unwrap returns the underlying validation error.
func (e InvalidValueError) Unwrap() error {
	return e.Cause
}

// Validate checks the value produced by r against the go-playground/validator
// constraints, e.g. "required,numeric". Structs are validated using their
// own `validate` struct tags when constraints is empty.
func Validate[T any](r Reader[T], constraints string) Reader[T] {
	return Map(r, func(ctx context.Context, v T) (T, error) {
		var err error
		if constraints == "" {
			err = validate.StructCtx(ctx, v)
		} else {
			err = validate.VarCtx(ctx, v, constraints)
		}
		if err != nil {
			return v, InvalidValueError{Constraints: constraints, Cause: err}
		}
		return v, nil
	})
}
