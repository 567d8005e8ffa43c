// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Env reads the environment variable named by key.
// The value is considered set if the variable is present, even when empty.
func Env(key string) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		v, ok := os.LookupEnv(key)
		if !ok {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}

// DotEnv reads key from the dotenv formatted file at path without modifying
// the process environment. A missing file is treated as an unset value.
func DotEnv(path string, key string) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		m, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			return Value[string]{}, nil
		}
		if err != nil {
			return Value[string]{}, err
		}

		v, ok := m[key]
		if !ok {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}

// File opens the file whose name is produced by name.
// The returned [io.Reader] is closed by [UnmarshalJSON] and [UnmarshalYAML].
func File(name Reader[string]) Reader[io.Reader] {
	return Map(name, func(ctx context.Context, name string) (io.Reader, error) {
		return os.Open(name)
	})
}

// UnmarshalJSON decodes the JSON document produced by r into a T.
func UnmarshalJSON[T any](r Reader[io.Reader]) Reader[T] {
	return Map(r, func(ctx context.Context, rd io.Reader) (t T, err error) {
		defer closeIfCloser(&err, rd)

		err = json.NewDecoder(rd).Decode(&t)
		return t, err
	})
}

// UnmarshalYAML decodes the YAML document produced by r into a T.
func UnmarshalYAML[T any](r Reader[io.Reader]) Reader[T] {
	return Map(r, func(ctx context.Context, rd io.Reader) (t T, err error) {
		defer closeIfCloser(&err, rd)

		err = yaml.NewDecoder(rd).Decode(&t)
		return t, err
	})
}

func closeIfCloser(err *error, r io.Reader) {
	c, ok := r.(io.Closer)
	if !ok {
		return
	}
	*err = errors.Join(*err, c.Close())
}
