// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	t.Run("will return ErrValueNotSet", func(t *testing.T) {
		t.Run("if the reader has no value", func(t *testing.T) {
			_, err := Read(context.Background(), EmptyReader[string]())
			require.ErrorIs(t, err, ErrValueNotSet)
		})

		t.Run("if the reader is nil", func(t *testing.T) {
			var r Reader[int]
			_, err := Read(context.Background(), r)
			require.ErrorIs(t, err, ErrValueNotSet)
		})
	})

	t.Run("will return the reader error", func(t *testing.T) {
		readErr := errors.New("failed")
		r := ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
			return Value[string]{}, readErr
		})

		_, err := Read(context.Background(), r)
		require.ErrorIs(t, err, readErr)
	})
}

func TestMust(t *testing.T) {
	t.Run("will panic with a ReadError", func(t *testing.T) {
		t.Run("if the value is not set", func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)

				err, ok := r.(ReadError)
				require.True(t, ok)
				require.ErrorIs(t, err, ErrValueNotSet)
			}()

			Must(context.Background(), EmptyReader[string]())
		})
	})

	t.Run("will return the value", func(t *testing.T) {
		t.Run("if the value is set", func(t *testing.T) {
			v := Must(context.Background(), ReaderOf("hello"))
			require.Equal(t, "hello", v)
		})
	})
}

func TestMustOr(t *testing.T) {
	t.Run("will return the default", func(t *testing.T) {
		t.Run("if the value is not set", func(t *testing.T) {
			v := MustOr(context.Background(), 5, EmptyReader[int]())
			require.Equal(t, 5, v)
		})
	})

	t.Run("will panic", func(t *testing.T) {
		t.Run("if the value cannot be parsed", func(t *testing.T) {
			require.Panics(t, func() {
				MustOr(context.Background(), 5, IntFromString(ReaderOf("five")))
			})
		})
	})
}

func TestOr(t *testing.T) {
	t.Run("will return the first set value", func(t *testing.T) {
		r := Or(
			EmptyReader[string](),
			nil,
			ReaderOf("second"),
			ReaderOf("third"),
		)

		v, err := Read(context.Background(), r)
		require.NoError(t, err)
		require.Equal(t, "second", v)
	})

	t.Run("will not fall through on an error", func(t *testing.T) {
		readErr := errors.New("failed")
		r := Or(
			ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
				return Value[string]{}, readErr
			}),
			ReaderOf("fallback"),
		)

		_, err := Read(context.Background(), r)
		require.ErrorIs(t, err, readErr)
	})
}

func TestEnv(t *testing.T) {
	t.Run("will treat an empty but present variable as set", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_EMPTY", "")

		v, err := Read(context.Background(), Default("default", Env("CONFIG_TEST_EMPTY")))
		require.NoError(t, err)
		require.Equal(t, "", v)
	})

	t.Run("will return the variable value", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_VALUE", "4000")

		v, err := Read(context.Background(), IntFromString(Env("CONFIG_TEST_VALUE")))
		require.NoError(t, err)
		require.Equal(t, 4000, v)
	})
}

func TestDotEnv(t *testing.T) {
	t.Run("will return an unset value", func(t *testing.T) {
		t.Run("if the file does not exist", func(t *testing.T) {
			r := DotEnv(filepath.Join(t.TempDir(), ".env"), "PORT")

			_, err := Read(context.Background(), r)
			require.ErrorIs(t, err, ErrValueNotSet)
		})

		t.Run("if the key is not in the file", func(t *testing.T) {
			name := filepath.Join(t.TempDir(), ".env")
			err := os.WriteFile(name, []byte("OTHER=1\n"), 0o600)
			require.NoError(t, err)

			_, err = Read(context.Background(), DotEnv(name, "PORT"))
			require.ErrorIs(t, err, ErrValueNotSet)
		})
	})

	t.Run("will return the value from the file", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), ".env")
		err := os.WriteFile(name, []byte("# local overrides\nPORT=4321\n"), 0o600)
		require.NoError(t, err)

		v, err := Read(context.Background(), DotEnv(name, "PORT"))
		require.NoError(t, err)
		require.Equal(t, "4321", v)
	})
}

func TestFile(t *testing.T) {
	t.Run("will decode yaml from a file", func(t *testing.T) {
		type seed struct {
			Titles []string `yaml:"titles"`
		}

		name := filepath.Join(t.TempDir(), "seed.yaml")
		err := os.WriteFile(name, []byte("titles:\n  - a\n  - b\n"), 0o600)
		require.NoError(t, err)

		v, err := Read(context.Background(), UnmarshalYAML[seed](File(ReaderOf(name))))
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, v.Titles)
	})

	t.Run("will return an error if the file does not exist", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "missing.yaml")

		_, err := Read(context.Background(), File(ReaderOf(name)))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("will be unset if the name is unset", func(t *testing.T) {
		_, err := Read(context.Background(), File(EmptyReader[string]()))
		require.ErrorIs(t, err, ErrValueNotSet)
	})
}

func TestUnmarshalJSON(t *testing.T) {
	t.Run("will return an error for malformed json", func(t *testing.T) {
		r := UnmarshalJSON[map[string]any](ReaderOf[io.Reader](strings.NewReader("{")))

		_, err := Read(context.Background(), r)
		require.Error(t, err)
	})
}

func TestFromString(t *testing.T) {
	t.Run("will parse", func(t *testing.T) {
		ctx := context.Background()

		i64, err := Read(ctx, Int64FromString(ReaderOf("9223372036854775807")))
		require.NoError(t, err)
		assert.Equal(t, int64(9223372036854775807), i64)

		f, err := Read(ctx, Float64FromString(ReaderOf("0.25")))
		require.NoError(t, err)
		assert.Equal(t, 0.25, f)

		b, err := Read(ctx, BoolFromString(ReaderOf("true")))
		require.NoError(t, err)
		assert.True(t, b)

		d, err := Read(ctx, DurationFromString(ReaderOf("5s")))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, d)
	})

	t.Run("will return an error if the string is invalid", func(t *testing.T) {
		testCases := []struct {
			Name string
			Read func(context.Context) error
		}{
			{
				Name: "int",
				Read: func(ctx context.Context) error {
					_, err := Read(ctx, IntFromString(ReaderOf("x")))
					return err
				},
			},
			{
				Name: "bool",
				Read: func(ctx context.Context) error {
					_, err := Read(ctx, BoolFromString(ReaderOf("x")))
					return err
				},
			},
			{
				Name: "duration",
				Read: func(ctx context.Context) error {
					_, err := Read(ctx, DurationFromString(ReaderOf("x")))
					return err
				},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				err := testCase.Read(context.Background())
				require.Error(t, err)
				require.NotErrorIs(t, err, ErrValueNotSet)
			})
		}
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		Name        string
		Value       string
		Constraints string
		Valid       bool
	}{
		{Name: "numeric port", Value: "3000", Constraints: "numeric", Valid: true},
		{Name: "non numeric port", Value: "abc", Constraints: "numeric", Valid: false},
		{Name: "empty required", Value: "", Constraints: "required", Valid: false},
		{Name: "hostport", Value: "localhost:4317", Constraints: "hostname_port", Valid: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			_, err := Read(context.Background(), Validate(ReaderOf(testCase.Value), testCase.Constraints))
			if testCase.Valid {
				require.NoError(t, err)
				return
			}

			var ive InvalidValueError
			require.ErrorAs(t, err, &ive)
			require.Equal(t, testCase.Constraints, ive.Constraints)
		})
	}

	t.Run("will validate struct tags if no constraints are given", func(t *testing.T) {
		type server struct {
			Port int `validate:"min=1,max=65535"`
		}

		_, err := Read(context.Background(), Validate(ReaderOf(server{Port: 70000}), ""))
		require.Error(t, err)

		v, err := Read(context.Background(), Validate(ReaderOf(server{Port: 3000}), ""))
		require.NoError(t, err)
		require.Equal(t, 3000, v.Port)
	})
}
