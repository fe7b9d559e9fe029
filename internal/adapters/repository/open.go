package repository

import (
	"context"
	"fmt"
	"time"
)

// Driver names accepted by Open.
const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Settings selects and addresses a store implementation.
type Settings struct {
	Driver          string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	SQLDSN          string
	ConnectTimeout  time.Duration
}

// Open connects the store named by s.Driver and wraps it with metrics and
// debug logging.
func Open(ctx context.Context, s Settings, opts ...Option) (Store, error) {
	var (
		store Store
		err   error
	)
	switch s.Driver {
	case DriverMongo:
		store, err = DialMongo(ctx, s.MongoURI, s.MongoDatabase, s.MongoCollection, s.ConnectTimeout, opts...)
	case DriverSQLite, DriverPostgres:
		if s.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.ConnectTimeout)
			defer cancel()
		}
		store, err = OpenSQL(ctx, s.Driver, s.SQLDSN, opts...)
	case DriverMemory:
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, s.Driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(store, opts...), nil
}
