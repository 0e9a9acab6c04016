package quality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/testutil"
)

func TestSetStatus_RecordsZeroQuantityEntry(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "L1", 10, nil)

	tr, err := f.Quality.SetStatus(f.Ctx, p.ID, "L1", entity.QCReturnedInspection)
	require.NoError(t, err)
	assert.Equal(t, entity.QCSellable, tr.From)
	assert.Equal(t, entity.QCReturnedInspection, tr.To)
	assert.Equal(t, testutil.Qty(10), tr.Batch.Quantity)
	assert.True(t, tr.Entry.QuantityChange.IsZero())
	assert.Equal(t, entity.CorrelationQuality, tr.Entry.CorrelationType)
	assert.Contains(t, tr.Entry.Reason, "Sellable")
	assert.Contains(t, tr.Entry.Reason, "Returned - Inspection Required")

	tr, err = f.Quality.SetStatus(f.Ctx, p.ID, "L1", entity.QCQuarantined)
	require.NoError(t, err)
	assert.Equal(t, entity.QCQuarantined, tr.Batch.Status)

	entries, err := f.Ledger.Entries(f.Ctx, ledger.Filter{CorrelationType: entity.CorrelationQuality, LotNumber: "L1"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSetStatus_QuarantineIsTerminal(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "L1", 10, nil)
	_, err := f.Quality.SetStatus(f.Ctx, p.ID, "L1", entity.QCReturnedInspection)
	require.NoError(t, err)
	_, err = f.Quality.SetStatus(f.Ctx, p.ID, "L1", entity.QCQuarantined)
	require.NoError(t, err)

	_, err = f.Quality.SetStatus(f.Ctx, p.ID, "L1", entity.QCSellable)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))

	batch, err := f.Inventory.GetBatch(f.Ctx, p.Ref(), "L1")
	require.NoError(t, err)
	assert.Equal(t, entity.QCQuarantined, batch.Status)
}

func TestSetStatus_UnknownStatusAndLot(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)

	_, err := f.Quality.SetStatus(f.Ctx, p.ID, "L1", "Lost")
	assert.True(t, apperror.IsValidation(err))

	_, err = f.Quality.SetStatus(f.Ctx, p.ID, "missing", entity.QCReturnedInspection)
	assert.True(t, apperror.IsNotFound(err))
}
