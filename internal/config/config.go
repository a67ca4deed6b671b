// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

// Package config loads service configuration from defaults, an optional YAML
// file, environment variables, and command-line flags, in ascending
// precedence.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values.
const (
	DefaultAddr        = ":3000"
	DefaultMetricsAddr = "127.0.0.1:9101"
	DefaultMaxConns    = 5
	DefaultTokenTTL    = 24 * time.Hour
	DefaultLogFormat   = "json"
)

// Environment variable overrides. The signing secret and database URL carry
// credentials, so they are accepted from the environment even when a config
// file is in use.
const (
	envDatabaseURL = "AUTHVAULT_DATABASE_URL"
	envJWTSecret   = "AUTHVAULT_JWT_SECRET"
)

// Config holds all service configuration.
type Config struct {
	// Server
	Addr        string
	MetricsAddr string

	// Database
	DatabaseURL string
	MaxConns    int32

	// Auth core
	JWTSecret string // required, no default
	TokenTTL  time.Duration

	// Transport collaborator settings
	CookieDomain   string
	CookieSecure   bool
	AllowedOrigins []string

	// Logging
	LogFormat string // "json" or "text"
}

// RegisterFlags registers all configuration flags on fs. Flag names double
// as koanf keys (dots as separators).
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("server.addr", DefaultAddr, "HTTP listen address")
	fs.String("server.metrics_addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("database.url", "", "PostgreSQL connection URL")
	fs.Int32("database.max_conns", DefaultMaxConns, "maximum database connections")
	fs.String("auth.jwt_secret", "", "session token signing secret")
	fs.Duration("auth.token_ttl", DefaultTokenTTL, "session token lifetime")
	fs.String("cookie.domain", "localhost", "session cookie domain")
	fs.Bool("cookie.secure", false, "set the Secure flag on the session cookie")
	fs.StringSlice("cors.allowed_origins", []string{"http://localhost:5173"}, "allowed CORS origins")
	fs.String("log.format", DefaultLogFormat, "log format (json or text)")
}

// Load builds the configuration. Precedence, lowest to highest: flag
// defaults, YAML file (if path is non-empty), environment overrides,
// explicitly set flags.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	// posflag consults k for existing keys, so file values win over flag
	// defaults while explicitly set flags win over the file.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
	}

	cfg := &Config{
		Addr:           k.String("server.addr"),
		MetricsAddr:    k.String("server.metrics_addr"),
		DatabaseURL:    k.String("database.url"),
		MaxConns:       int32(k.Int("database.max_conns")),
		JWTSecret:      k.String("auth.jwt_secret"),
		TokenTTL:       k.Duration("auth.token_ttl"),
		CookieDomain:   k.String("cookie.domain"),
		CookieSecure:   k.Bool("cookie.secure"),
		AllowedOrigins: k.Strings("cors.allowed_origins"),
		LogFormat:      k.String("log.format"),
	}

	if v := os.Getenv(envDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(envJWTSecret); v != "" {
		cfg.JWTSecret = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database URL is required (--database.url or %s)", envDatabaseURL)
	}
	if c.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("JWT signing secret is required (--auth.jwt_secret or %s)", envJWTSecret)
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token TTL must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("format", c.LogFormat).
			Errorf("log format must be json or text")
	}
	return nil
}
