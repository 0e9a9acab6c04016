package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/domain/inventory"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/testutil"
)

func TestReceiveStock_WritesBatchAndLedger(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "5.00", 90)

	r, err := f.Inventory.ReceiveStock(f.Ctx, inventory.ReceiveInput{
		Ref:           p.Ref(),
		LotNumber:     "SUP-1",
		Quantity:      testutil.Qty(40),
		ExpiryDate:    testutil.Date(2026, 9, 1),
		PurchaseOrder: "PO-77",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.QCSellable, r.Batch.Status)
	assert.Equal(t, testutil.Qty(40), r.Entry.QuantityChange)
	assert.Equal(t, entity.CorrelationPurchaseOrder, r.Entry.CorrelationType)
	assert.Equal(t, "PO-77", r.Entry.CorrelationID)
	assert.Equal(t, "tester", r.Entry.UserID)
	assert.Equal(t, testutil.Epoch, r.Entry.Date)

	total, err := f.Inventory.TotalQuantity(f.Ctx, p.Ref())
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(40), total)
}

func TestReceiveStock_DuplicateLot(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Resin")
	f.Receive(t, c.Ref(), "R-1", 10, nil)

	_, err := f.Inventory.ReceiveStock(f.Ctx, inventory.ReceiveInput{
		Ref:       c.Ref(),
		LotNumber: "R-1",
		Quantity:  testutil.Qty(5),
	})
	assert.True(t, apperror.IsValidation(err))

	entries, err := f.Ledger.Entries(f.Ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAdjustStock_RemoveMoreThanBatchHolds(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "5.00", 0)
	f.Receive(t, p.Ref(), "L1", 3, nil)

	_, err := f.Inventory.AdjustStock(f.Ctx, inventory.AdjustInput{
		Ref:       p.Ref(),
		LotNumber: "L1",
		Delta:     testutil.Qty(-5),
		Reason:    "damaged",
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	batch, err := f.Inventory.GetBatch(f.Ctx, p.Ref(), "L1")
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(3), batch.Quantity)

	entries, err := f.Ledger.Entries(f.Ctx, ledger.Filter{CorrelationType: entity.CorrelationAdjustment})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAdjustStock_PrunesEmptyBatch(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "5.00", 0)
	f.Receive(t, p.Ref(), "L1", 3, nil)
	f.Receive(t, p.Ref(), "L2", 7, nil)

	adj, err := f.Inventory.AdjustStock(f.Ctx, inventory.AdjustInput{
		Ref:       p.Ref(),
		LotNumber: "L1",
		Delta:     testutil.Qty(-3),
		Reason:    "cycle count",
	})
	require.NoError(t, err)
	assert.Equal(t, "ADJ-2026-00001", adj.Number)
	assert.True(t, adj.Batch.Quantity.IsZero())
	assert.Equal(t, entity.CorrelationAdjustment, adj.Entry.CorrelationType)
	assert.Equal(t, adj.Number, adj.Entry.CorrelationID)

	batches, err := f.Inventory.Batches(f.Ctx, p.Ref())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "L2", batches[0].LotNumber)
}

func TestAdjustStock_PositiveOnUnknownLotOpensBatch(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Glue")

	adj, err := f.Inventory.AdjustStock(f.Ctx, inventory.AdjustInput{
		Ref:       c.Ref(),
		LotNumber: "FOUND-1",
		Delta:     testutil.Qty(12),
		Reason:    "found in warehouse",
	})
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(12), adj.Batch.Quantity)
	assert.Empty(t, adj.Batch.Status)

	balance, err := f.Ledger.Balance(f.Ctx, c.Ref())
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(12), balance)
}

func TestAdjustStock_RequiresReason(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Glue")

	_, err := f.Inventory.AdjustStock(f.Ctx, inventory.AdjustInput{
		Ref:       c.Ref(),
		LotNumber: "X",
		Delta:     testutil.Qty(1),
		Reason:    "  ",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestAdjustStock_NegativeOnUnknownLot(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Glue")

	_, err := f.Inventory.AdjustStock(f.Ctx, inventory.AdjustInput{
		Ref:       c.Ref(),
		LotNumber: "NOPE",
		Delta:     testutil.Qty(-1),
		Reason:    "shrinkage",
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestApplyDelta_RejectsZero(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Glue")
	f.Receive(t, c.Ref(), "G1", 1, nil)

	_, err := f.Inventory.ApplyDelta(f.Ctx, c.Ref(), "G1", 0)
	assert.True(t, apperror.IsValidation(err))
}

func TestSetBatchStatus_ComponentRejected(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Glue")
	f.Receive(t, c.Ref(), "G1", 1, nil)

	_, err := f.Inventory.SetBatchStatus(f.Ctx, c.Ref(), "G1", entity.QCQuarantined)
	assert.True(t, apperror.IsValidation(err))
}
