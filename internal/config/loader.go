package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment keys that steer loading itself.
const (
	EnvPrefix     = "LOTUS_"
	EnvConfig     = "LOTUS_CONFIG"
	EnvDotenv     = "LOTUS_DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LOTUS_CONFIG is set
//  3. env (prefix LOTUS_), after merging a .env file when one exists
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// LOTUS_MONGO_URI -> mongo_uri (flat keys, underscores preserved)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotenv merges a .env file into the process environment without
// overriding variables that are already set. A missing default file is fine,
// a missing explicitly requested file is not.
func loadDotenv() error {
	path, explicit := os.LookupEnv(EnvDotenv)
	if !explicit || path == "" {
		path = defaultDotenv
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" || c.MongoCollection == "" {
			return fmt.Errorf("%w: mongo_uri, mongo_database and mongo_collection are required", ErrInvalidConfig)
		}
	case DriverSQLite, DriverPostgres:
		if c.SQLDSN == "" {
			return fmt.Errorf("%w: sql_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("%w: connect_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.MaxListLimit < 0 {
		return fmt.Errorf("%w: max_list_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
