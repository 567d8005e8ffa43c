// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"

	"github.com/z5labs/blogs/config"
	httpserver "github.com/z5labs/blogs/http"
)

// DefaultSeed is stored at startup when no seed file is configured.
var DefaultSeed = []string{"Sample Title 1", "Sample Title 2", "Sample Title 3"}

// Config holds every setting the service reads at startup.
type Config struct {
	Title   config.Reader[string]
	Version config.Reader[string]

	// Seed lists the titles stored before the first request.
	// [DefaultSeed] is used while it is unset.
	Seed config.Reader[[]string]

	Server httpserver.Server
}

type seedFile struct {
	Titles []string `yaml:"titles" json:"titles"`
}

// SeedFile reads the titles listed under the titles key of a YAML file.
// It is unset when name is unset.
func SeedFile(name config.Reader[string]) config.Reader[[]string] {
	return config.Map(
		config.UnmarshalYAML[seedFile](config.File(name)),
		func(ctx context.Context, f seedFile) ([]string, error) {
			return f.Titles, nil
		},
	)
}

// Port resolves the listening port from the PORT environment variable,
// then the PORT key of a .env file in the working directory. It defaults to 3000.
func Port() config.Reader[int] {
	return config.Validate(
		config.IntFromString(config.Or(
			config.Env("PORT"),
			config.DotEnv(".env", "PORT"),
			config.ReaderOf("3000"),
		)),
		"min=1,max=65535",
	)
}

// ConfigFromEnv reads the service configuration from the environment.
//
// Environment Variables:
//   - PORT: listening port, also read from .env (default 3000)
//   - BLOGS_SEED_FILE: YAML file of initial titles
//   - OPENAPI_TITLE: title of the OpenAPI document (default "Blogs API")
//   - OPENAPI_VERSION: version of the OpenAPI document (default "v1.0.0")
//   - HTTP_*: server timeouts, see the http package
func ConfigFromEnv() Config {
	return Config{
		Title:   config.Default("Blogs API", config.Env("OPENAPI_TITLE")),
		Version: config.Default("v1.0.0", config.Env("OPENAPI_VERSION")),
		Seed:    SeedFile(config.Env("BLOGS_SEED_FILE")),
		Server: httpserver.NewServer(
			httpserver.NewTCPListener(httpserver.Port(Port())),
			httpserver.ReadTimeout(httpserver.ReadTimeoutFromEnv()),
			httpserver.ReadHeaderTimeout(httpserver.ReadHeaderTimeoutFromEnv()),
			httpserver.WriteTimeout(httpserver.WriteTimeoutFromEnv()),
			httpserver.IdleTimeout(httpserver.IdleTimeoutFromEnv()),
			httpserver.ShutdownTimeout(httpserver.ShutdownTimeoutFromEnv()),
			httpserver.MaxHeaderBytes(httpserver.MaxHeaderBytesFromEnv()),
		),
	}
}
