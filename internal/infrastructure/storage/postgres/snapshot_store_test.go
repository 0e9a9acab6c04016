package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/infrastructure/storage/snapshot"
)

func TestSnapshotStore_SelectQuery(t *testing.T) {
	s := NewSnapshotStore(nil, nil, "")

	sql, args, err := s.selectQuery()
	require.NoError(t, err)
	assert.Equal(t, "SELECT name, payload, compression_algo FROM erpledger_state ORDER BY name", sql)
	assert.Empty(t, args)
}

func TestSnapshotStore_UpsertQuery(t *testing.T) {
	s := NewSnapshotStore(nil, nil, "ledger_state")

	sql, args, err := s.upsertQuery(snapshot.Bucket{
		Name:            snapshot.BucketLedger,
		Payload:         []byte(`[]`),
		CompressionAlgo: snapshot.CompressionZstd,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO ledger_state")
	assert.Contains(t, sql, "$1")
	assert.Contains(t, sql, "$3")
	assert.Contains(t, sql, "ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload")
	require.Len(t, args, 3)
	assert.Contains(t, args, snapshot.BucketLedger)
	assert.Contains(t, args, snapshot.CompressionZstd)
}
