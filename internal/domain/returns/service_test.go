package returns_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/domain/orders"
	"erpledger/internal/domain/returns"
	"erpledger/internal/testutil"
)

const customer id.ID = 77

func TestProcessReturn_CreatesInspectionBatchAndCredit(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "GIZMO", "2.50", 0)

	rma, err := f.Returns.CreateReturn(f.Ctx, returns.CreateReturnInput{
		CustomerID: customer,
		Lines:      []entity.ReturnLine{{ProductID: p.ID, Quantity: testutil.Qty(10)}},
		Reason:     "wrong colour",
	})
	require.NoError(t, err)
	assert.Equal(t, "RMA-2026-00001", rma.Number)
	assert.Equal(t, entity.ReturnRequested, rma.Status)

	res, err := f.Returns.ProcessReturn(f.Ctx, rma.ID)
	require.NoError(t, err)

	require.Len(t, res.Batches, 1)
	b := res.Batches[0]
	assert.Equal(t, returns.ReturnLotNumber(rma.Number, p.ID), b.LotNumber)
	assert.Equal(t, testutil.Qty(10), b.Quantity)
	assert.Equal(t, entity.QCReturnedInspection, b.Status)
	assert.False(t, b.IsSellable())

	require.NotNil(t, res.CreditNote)
	assert.True(t, res.CreditNote.Amount.Equal(types.MustMoney("25.00")))
	assert.True(t, res.CreditNote.Remaining.Equal(types.MustMoney("25.00")))
	assert.Equal(t, entity.CreditNoteOpen, res.CreditNote.Status)
	assert.Equal(t, customer, res.CreditNote.CustomerID)

	assert.Equal(t, entity.ReturnProcessed, res.Return.Status)
	require.NotNil(t, res.Return.CreditNoteID)
	assert.Equal(t, res.CreditNote.ID, *res.Return.CreditNoteID)

	entries, err := f.Ledger.Entries(f.Ctx, ledger.Filter{CorrelationType: entity.CorrelationReturn})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rma.Number, entries[0].CorrelationID)
	assert.Equal(t, testutil.Qty(10), entries[0].QuantityChange)

	_, err = f.Returns.ProcessReturn(f.Ctx, rma.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestCreateReturn_OrderOfAnotherCustomer(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "GIZMO", "2.50", 0)
	o, err := f.Orders.CreateOrder(f.Ctx, orders.CreateInput{
		CustomerID: 1,
		Items:      []entity.OrderLine{{ProductID: p.ID, Quantity: testutil.Qty(1)}},
	})
	require.NoError(t, err)

	_, err = f.Returns.CreateReturn(f.Ctx, returns.CreateReturnInput{
		CustomerID: customer,
		OrderID:    &o.ID,
		Lines:      []entity.ReturnLine{{ProductID: p.ID, Quantity: testutil.Qty(1)}},
		Reason:     "broken",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateReturn_ValidatesLines(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "GIZMO", "2.50", 0)

	_, err := f.Returns.CreateReturn(f.Ctx, returns.CreateReturnInput{
		CustomerID: customer,
		Lines: []entity.ReturnLine{
			{ProductID: p.ID, Quantity: testutil.Qty(1)},
			{ProductID: p.ID, Quantity: testutil.Qty(2)},
		},
		Reason: "dup",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestSupplierReturn(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Resin")
	f.Receive(t, c.Ref(), "SUP-9", 20, nil)

	srma, err := f.Returns.CreateSupplierReturn(f.Ctx, returns.CreateSupplierReturnInput{
		ComponentID:       c.ID,
		SupplierLotNumber: "SUP-9",
		Quantity:          testutil.Qty(8),
		Reason:            "contaminated",
	})
	require.NoError(t, err)
	assert.Equal(t, "SRMA-2026-00001", srma.Number)

	done, err := f.Returns.ProcessSupplierReturn(f.Ctx, srma.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnProcessed, done.Status)

	batch, err := f.Inventory.GetBatch(f.Ctx, c.Ref(), "SUP-9")
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(12), batch.Quantity)

	entries, err := f.Ledger.Entries(f.Ctx, ledger.Filter{CorrelationType: entity.CorrelationSupplierRet})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testutil.Qty(-8), entries[0].QuantityChange)
}

func TestSupplierReturn_MoreThanLotHolds(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Resin")
	f.Receive(t, c.Ref(), "SUP-9", 5, nil)

	srma, err := f.Returns.CreateSupplierReturn(f.Ctx, returns.CreateSupplierReturnInput{
		ComponentID:       c.ID,
		SupplierLotNumber: "SUP-9",
		Quantity:          testutil.Qty(8),
		Reason:            "contaminated",
	})
	require.NoError(t, err)

	_, err = f.Returns.ProcessSupplierReturn(f.Ctx, srma.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	still, err := f.Returns.GetSupplierReturn(f.Ctx, srma.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnRequested, still.Status)
}

func TestCreateSupplierReturn_UnknownLot(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Resin")

	_, err := f.Returns.CreateSupplierReturn(f.Ctx, returns.CreateSupplierReturnInput{
		ComponentID:       c.ID,
		SupplierLotNumber: "NOPE",
		Quantity:          testutil.Qty(1),
		Reason:            "x",
	})
	assert.True(t, apperror.IsNotFound(err))
}
