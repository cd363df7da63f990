package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/config"
)

// KV is an opaque blob store. Implementations must make Set atomic with
// respect to Get on the same key.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open selects the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (KV, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		kv, err := OpenSQLite(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "postgres":
		kv, err := OpenPostgres(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
