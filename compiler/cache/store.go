package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	digest     BLOB PRIMARY KEY,
	record     BLOB NOT NULL,
	created_at INTEGER NOT NULL
)`

// Store is a SQLite-backed artifact cache.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	// One connection serializes writers from concurrent compiles.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// DefaultPath returns the cache location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bytenode", "artifacts.db"), nil
}

// Get returns the bytecode stored for k.
func (s *Store) Get(ctx context.Context, k Key) ([]byte, bool, error) {
	digest, err := k.Digest()
	if err != nil {
		return nil, false, err
	}
	var data []byte
	err = s.db.QueryRowContext(ctx, `SELECT record FROM artifacts WHERE digest = ?`, digest[:]).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup: %w", err)
	}
	rec, err := UnmarshalRecord(data)
	if err != nil {
		return nil, false, err
	}
	return rec.Bytecode, true, nil
}

// Put stores bytecode for k, replacing any previous entry.
func (s *Store) Put(ctx context.Context, k Key, bytecode []byte) error {
	digest, err := k.Digest()
	if err != nil {
		return err
	}
	rec := newRecord(k, bytecode)
	data, err := MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("cache: marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO artifacts (digest, record, created_at) VALUES (?, ?, ?)`,
		digest[:], data, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}

// Len returns the number of cached artifacts.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
