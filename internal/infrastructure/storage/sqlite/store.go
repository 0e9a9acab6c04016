// Package sqlite persists snapshot buckets to a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"erpledger/internal/infrastructure/storage/snapshot"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "erpledger.db"

// Store keeps one row per bucket in the state table.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var _ snapshot.Store = (*Store)(nil)

// Open creates the database file (and its directory) if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		compression_algo TEXT NOT NULL DEFAULT 'none'
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// LoadBuckets returns every stored bucket.
func (s *Store) LoadBuckets(ctx context.Context) ([]snapshot.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, payload, compression_algo FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []snapshot.Bucket
	for rows.Next() {
		var b snapshot.Bucket
		var algo string
		if err := rows.Scan(&b.Name, &b.Payload, &algo); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		b.CompressionAlgo = snapshot.CompressionAlgo(algo)
		out = append(out, b)
	}
	return out, rows.Err()
}

// SaveBuckets upserts the buckets in a single sql transaction.
func (s *Store) SaveBuckets(ctx context.Context, buckets []snapshot.Bucket) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, b := range buckets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(name, payload, compression_algo) VALUES(?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, compression_algo = excluded.compression_algo`,
			b.Name, b.Payload, string(b.CompressionAlgo),
		); err != nil {
			return fmt.Errorf("upsert %s: %w", b.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Ping checks the database file is still reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
