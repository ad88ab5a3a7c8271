package pg

import (
	"github.com/brightside-news/brightside-server/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the full storage surface on PostgreSQL.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(pool *ConnectionPool) *Store {
	return &Store{db: pool.conn}
}

var _ storage.Store = (*Store)(nil)
