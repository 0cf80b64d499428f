// Package store provides the durable key-value storage the search history is
// persisted in. Values are opaque strings; every key is written atomically.
package store

import (
	"context"
	"fmt"
)

// Store is a string-keyed key-value store.
//
// Get reports ok=false when the key is absent; an empty string stored under a
// key is present.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Maintainer is implemented by stores that need periodic upkeep.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns a Store for the given driver. dsn is ignored by the memory driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
