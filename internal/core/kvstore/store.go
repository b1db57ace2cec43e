// Package kvstore is durable client-local storage: whole values under string
// keys, read and written in one piece.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	// Get returns ErrNotFound when the key was never set
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the whole value
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Driver names accepted by Open
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Open builds a store from STORAGE_DRIVER / STORAGE_DSN style settings.
// dsn is a directory for file, a path for sqlite, a connection string for
// postgres and an address or redis:// URL for redis.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverFile:
		if dsn == "" {
			dsn = "./data"
		}
		return NewFileStore(dsn)
	case DriverSQLite:
		if dsn == "" {
			dsn = "./data/clarity.db"
		}
		return NewSQLiteStore(ctx, dsn)
	case DriverPostgres:
		return NewPostgresStore(ctx, dsn)
	case DriverRedis:
		return NewRedisStore(ctx, dsn)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
