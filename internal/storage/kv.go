package storage

import (
	"context"
	"fmt"
)

// KV is a flat string key-value store, the shape of the browser's
// localStorage. Backends must make Set overwrite any prior value.
type KV interface {
	// Get returns the value under key; found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open connects the named backend. dsn is a file path for sqlite, a
// connection URL for postgres, and ignored for memory.
func Open(ctx context.Context, driver, dsn string) (KV, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, dsn)
	case DriverPostgres:
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		return OpenPostgres(ctx, dsn)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
