// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package config loads and validates the lorekeep configuration.
//
// Configuration is layered: struct defaults, then an optional YAML file,
// then command-line flags. The merged result is validated against a JSON
// Schema generated from the Config struct itself.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults applied before any file or flag values.
const (
	DefaultLogFormat         = "json"
	DefaultLogLevel          = "info"
	DefaultObservabilityAddr = "127.0.0.1:9100"
	DefaultSessionTTL        = 24 * time.Hour
	DefaultConnectTimeout    = 30 * time.Second
	DefaultMaxConns          = 10
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL            string        `koanf:"url" json:"url" jsonschema:"description=PostgreSQL connection URL,required"`
	MaxConns       int32         `koanf:"max_conns" json:"max_conns,omitempty" jsonschema:"description=Maximum pool connections,minimum=1"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" json:"connect_timeout,omitempty" jsonschema:"description=Connection readiness timeout,type=string"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"description=Log output format,enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"description=Minimum log level,enum=debug,enum=info,enum=warn,enum=error"`
}

// ObservabilityConfig holds the metrics/health endpoint settings.
type ObservabilityConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" jsonschema:"description=Listen address for /metrics and health probes"`
}

// SessionConfig holds session issuance settings.
type SessionConfig struct {
	TTL time.Duration `koanf:"ttl" json:"ttl,omitempty" jsonschema:"description=Session lifetime,type=string"`
}

// Config is the full lorekeep configuration.
type Config struct {
	Database      DatabaseConfig      `koanf:"database" json:"database" jsonschema:"required"`
	Log           LogConfig           `koanf:"log" json:"log,omitempty"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability,omitempty"`
	Session       SessionConfig       `koanf:"session" json:"session,omitempty"`
}

// Default returns a Config populated with defaults. The database URL has no
// default and must come from the file or flags.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			MaxConns:       DefaultMaxConns,
			ConnectTimeout: DefaultConnectTimeout,
		},
		Log: LogConfig{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
		},
		Observability: ObservabilityConfig{
			Addr: DefaultObservabilityAddr,
		},
		Session: SessionConfig{
			TTL: DefaultSessionTTL,
		},
	}
}

// Load merges the optional YAML file at path and the given flag set over the
// defaults, then validates the result. An empty path skips the file layer;
// a nil flag set skips the flag layer.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("path", path).
				With("operation", "load config file").
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the merged configuration. Schema validation catches shape
// errors; the checks here cover constraints the schema cannot express.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Database.MaxConns < 1 {
		return oops.Code("CONFIG_INVALID").
			With("max_conns", c.Database.MaxConns).
			Errorf("database.max_conns must be at least 1")
	}
	if c.Session.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("ttl", c.Session.TTL.String()).
			Errorf("session.ttl must be positive")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("format", c.Log.Format).
			Errorf("log.format must be json or text")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return oops.Code("CONFIG_INVALID").
			With("level", c.Log.Level).
			Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}
