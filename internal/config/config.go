// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading accepts context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig, loading failures wrap ErrLoadConfig.
package config

import (
	"time"

	repository "github.com/okian/lotus-ledger/internal/adapters/repository"
)

// Supported store drivers.
const (
	DriverMongo    = repository.DriverMongo
	DriverSQLite   = repository.DriverSQLite
	DriverPostgres = repository.DriverPostgres
	DriverMemory   = repository.DriverMemory
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. "0.0.0.0:3000".
	Addr string `koanf:"addr"`

	// StoreDriver selects the record store: mongo, sqlite, postgres or memory.
	StoreDriver string `koanf:"store_driver"`

	// MongoURI is the connection string of the document database.
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase and MongoCollection name where games live.
	MongoDatabase   string `koanf:"mongo_database"`
	MongoCollection string `koanf:"mongo_collection"`

	// SQLDSN is the gorm data source for the sqlite and postgres drivers.
	SQLDSN string `koanf:"sql_dsn"`

	// ConnectTimeoutMS bounds opening and pinging the store at startup.
	ConnectTimeoutMS int `koanf:"connect_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown and store disconnect.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// MaxListLimit caps GET /games?limit; 0 disables the cap.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              "0.0.0.0:3000",
		StoreDriver:       DriverMongo,
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "lotus_ledger_db",
		MongoCollection:   "game",
		SQLDSN:            "lotus_ledger.db",
		ConnectTimeoutMS:  10_000,
		ShutdownTimeoutMS: 30_000,
		MaxListLimit:      0,
	}
}

// ConnectTimeout returns ConnectTimeoutMS as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// StoreSettings returns the repository settings selected by c.
func (c *Config) StoreSettings() repository.Settings {
	return repository.Settings{
		Driver:          c.StoreDriver,
		MongoURI:        c.MongoURI,
		MongoDatabase:   c.MongoDatabase,
		MongoCollection: c.MongoCollection,
		SQLDSN:          c.SQLDSN,
		ConnectTimeout:  c.ConnectTimeout(),
	}
}
