package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"erpledger/internal/infrastructure/storage/snapshot"
)

// DefaultStateTable holds one row per snapshot bucket.
const DefaultStateTable = "erpledger_state"

var bucketColumns = ExtractDBColumns[snapshot.Bucket]()

// SnapshotStore implements snapshot.Store on PostgreSQL.
type SnapshotStore struct {
	pool    *Pool
	txm     *TxManager
	builder squirrel.StatementBuilderType
	table   string
}

var _ snapshot.Store = (*SnapshotStore)(nil)

// NewSnapshotStore creates the store. table defaults to DefaultStateTable.
func NewSnapshotStore(pool *Pool, txm *TxManager, table string) *SnapshotStore {
	if table == "" {
		table = DefaultStateTable
	}
	return &SnapshotStore{
		pool:    pool,
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		table:   table,
	}
}

// EnsureSchema creates the state table if it does not exist.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		compression_algo TEXT NOT NULL DEFAULT 'none',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, pgx.Identifier{s.table}.Sanitize())
	if _, err := s.txm.GetQuerier(ctx).Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// LoadBuckets returns every stored bucket.
func (s *SnapshotStore) LoadBuckets(ctx context.Context) ([]snapshot.Bucket, error) {
	sql, args, err := s.selectQuery()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var out []snapshot.Bucket
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select buckets: %w", err)
	}
	return out, nil
}

// SaveBuckets upserts the buckets in one database transaction.
func (s *SnapshotStore) SaveBuckets(ctx context.Context, buckets []snapshot.Bucket) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := s.txm.GetQuerier(ctx)
		for _, b := range buckets {
			sql, args, err := s.upsertQuery(b)
			if err != nil {
				return fmt.Errorf("build upsert %s: %w", b.Name, err)
			}
			if _, err := q.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("upsert %s: %w", b.Name, err)
			}
		}
		return nil
	})
}

// Close releases the pool.
func (s *SnapshotStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *SnapshotStore) selectQuery() (string, []any, error) {
	return s.builder.
		Select(bucketColumns...).
		From(s.table).
		OrderBy("name").
		ToSql()
}

func (s *SnapshotStore) upsertQuery(b snapshot.Bucket) (string, []any, error) {
	return s.builder.
		Insert(s.table).
		SetMap(StructToMap(b)).
		Suffix("ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, compression_algo = EXCLUDED.compression_algo, updated_at = now()").
		ToSql()
}
