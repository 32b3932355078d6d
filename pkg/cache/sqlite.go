package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrCorrupt is returned by the SQLite backend when the database file fails
// its integrity check on open.
var ErrCorrupt = errors.New("cache database is corrupt")

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);`

// SQLiteCache stores entries in a single SQLite table using the pure-Go
// modernc.org/sqlite driver. It is the default durable backend.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) the database at path, enables WAL mode,
// verifies its integrity and ensures the schema exists.
func NewSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initSQLite(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteCache{db: db}, nil
}

func initSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check;").Scan(&result); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: %s", ErrCorrupt, result)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get retrieves a value from the cache.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT data, expires_at FROM entries WHERE key = ?", key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt > 0 && time.Now().UnixMilli() > expiresAt {
		_, _ = c.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value in the cache, replacing any previous entry.
func (c *SQLiteCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixMilli()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO entries (key, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, data, expiresAt,
	)
	return err
}

// Delete removes a value from the cache.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key)
	return err
}

// Clear removes all entries whose key starts with prefix.
func (c *SQLiteCache) Clear(ctx context.Context, prefix string) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM entries WHERE substr(key, 1, ?) = ?", len(prefix), prefix,
	)
	return err
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// SQLiteBackend returns an [Opener] for a [SQLiteCache] at path.
// Recreate deletes the database file and its WAL companions.
func SQLiteBackend(path string) Opener { return sqliteOpener{path: path} }

type sqliteOpener struct{ path string }

func (o sqliteOpener) Name() string { return "sqlite" }

func (o sqliteOpener) Open(ctx context.Context) (Cache, error) {
	return NewSQLiteCache(ctx, o.path)
}

func (o sqliteOpener) Recreate(context.Context) error {
	for _, p := range []string{o.path, o.path + "-wal", o.path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

var _ Cache = (*SQLiteCache)(nil)
