package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/numerator"
)

// mockSequencer simulates the store's counter table.
type mockSequencer struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func (m *mockSequencer) NextValue(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	m.values[key]++
	return m.values[key], nil
}

func TestGetNextNumber_Default(t *testing.T) {
	seq := &mockSequencer{}
	svc := New(seq)
	ctx := context.Background()
	period := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	cfg := numerator.DefaultConfig("SO")

	num, err := svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "SO-2026-00002", num)

	// New year starts a new sequence.
	num, err = svc.GetNextNumber(ctx, cfg, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "SO-2027-00001", num)
}

func TestGetNextNumber_SequencerError(t *testing.T) {
	svc := New(&mockSequencer{err: errors.New("boom")})
	_, err := svc.GetNextNumber(context.Background(), numerator.DefaultConfig("INV"), time.Now())
	assert.ErrorContains(t, err, "boom")
}

func TestFormatNumber_Lot(t *testing.T) {
	day := time.Date(2025, 9, 1, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "JAM-20250901-001", FormatNumber(numerator.LotConfig("JAM"), day, 1))
	assert.Equal(t, "JAM-20250901-012", FormatNumber(numerator.LotConfig("JAM"), day, 12))
}

func TestBuildKey(t *testing.T) {
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "seq:JAM_2025_09_01", BuildKey(numerator.LotConfig("JAM"), day))
	assert.Equal(t, "seq:SO_2025", BuildKey(numerator.DefaultConfig("SO"), day))
	assert.Equal(t, "seq:X", BuildKey(numerator.Config{Prefix: "X"}, day))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("SO-2026-00042"))
	assert.Equal(t, int64(3), ParseNumber("JAM-20250901-003"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}
