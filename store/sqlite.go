package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite is a KV backed by a single SQLite database file.
type SQLite struct {
	pool   *sqlitex.Pool
	path   string
	logger zerolog.Logger
}

// OpenSQLite opens (creating if needed) the database at path. The parent
// directory must exist.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("store: sqlite path is required")
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    4,
		PrepareConn: prepareSQLite,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	logger = logger.With().Str("component", "store").Str("driver", "sqlite").Logger()
	logger.Info().Str("path", path).Msg("sqlite store opened")
	return &SQLite{pool: pool, path: path, logger: logger}, nil
}

// prepareSQLite runs once per pooled connection.
func prepareSQLite(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteTransient(conn, sqliteSchema, nil); err != nil {
		return fmt.Errorf("store: creating schema: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("store: take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var value []byte
	found := false
	err = sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return value, found, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: take connection: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{key, value, time.Now().UnixMilli()}},
	)
	if err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

// Close blocks until every borrowed connection is returned.
func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("sqlite store close failed")
		return fmt.Errorf("store: closing %s: %w", s.path, err)
	}
	s.logger.Info().Str("path", s.path).Msg("sqlite store closed")
	return nil
}
