package factory

import (
	"context"
	"fmt"

	"github.com/brightside-news/brightside-server/internal/storage"
	"github.com/brightside-news/brightside-server/internal/storage/memory"
	"github.com/brightside-news/brightside-server/internal/storage/pg"
)

// Result bundles the store with the lifecycle hooks of whatever backs it.
type Result struct {
	Store storage.Store
	Ping  func(ctx context.Context) error
	Close func()
}

// NewStore builds the configured storage backend. The pg backend connects,
// pings and migrates before returning.
func NewStore(ctx context.Context, storageType storage.Type, connStr string) (*Result, error) {
	switch storageType {
	case storage.PG:
		pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: connStr})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := pg.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return &Result{
			Store: store,
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil
	case storage.Memory:
		return &Result{
			Store: memory.NewStore(),
			Ping:  func(context.Context) error { return nil },
			Close: func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}
