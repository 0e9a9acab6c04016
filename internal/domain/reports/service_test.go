package reports_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/inventory"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/domain/orders"
	"erpledger/internal/domain/returns"
	"erpledger/internal/testutil"
)

// busyDay runs every kind of movement once.
func busyDay(t *testing.T, f *testutil.Fixture) (*entity.Product, *entity.Component, string) {
	t.Helper()
	c := f.Component(t, "Steel")
	f.Receive(t, c.Ref(), "S-1", 10, nil)
	f.Receive(t, c.Ref(), "S-2", 20, nil)
	p := f.Product(t, "FRAME", "4.00", 10, entity.BOMLine{ComponentID: c.ID, QuantityPerUnit: testutil.Qty(2)})

	run, err := f.Production.Produce(f.Ctx, p.ID, testutil.Qty(8))
	require.NoError(t, err)

	o, err := f.Orders.CreateOrder(f.Ctx, orders.CreateInput{
		CustomerID: 1,
		Items:      []entity.OrderLine{{ProductID: p.ID, Quantity: testutil.Qty(5)}},
	})
	require.NoError(t, err)
	_, err = f.Orders.Fulfill(f.Ctx, o.ID, []orders.LinePlan{{
		ProductID:   p.ID,
		Allocations: []orders.LotAllocation{{LotNumber: run.LotNumber, Quantity: testutil.Qty(3)}},
	}}, orders.StrategyBackorder)
	require.NoError(t, err)

	rma, err := f.Returns.CreateReturn(f.Ctx, returns.CreateReturnInput{
		CustomerID: 1,
		OrderID:    &o.ID,
		Lines:      []entity.ReturnLine{{ProductID: p.ID, Quantity: testutil.Qty(1)}},
		Reason:     "dented",
	})
	require.NoError(t, err)
	_, err = f.Returns.ProcessReturn(f.Ctx, rma.ID)
	require.NoError(t, err)

	_, err = f.Inventory.AdjustStock(f.Ctx, inventory.AdjustInput{
		Ref:       c.Ref(),
		LotNumber: "S-2",
		Delta:     testutil.Qty(-1),
		Reason:    "scrap",
	})
	require.NoError(t, err)
	return p, c, run.LotNumber
}

func TestReconcile_BalancedAfterEveryMovement(t *testing.T) {
	f := testutil.New(t)
	p, c, _ := busyDay(t, f)

	rec, err := f.Reports.Reconcile(f.Ctx)
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	require.Len(t, rec.Lines, 2)
	for _, line := range rec.Lines {
		assert.True(t, line.Balanced, line.Ref.String())
	}

	// 8 produced - 3 shipped + 1 returned
	total, err := f.Inventory.TotalQuantity(f.Ctx, p.Ref())
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(6), total)

	// 30 received - 16 consumed - 1 scrapped
	total, err = f.Inventory.TotalQuantity(f.Ctx, c.Ref())
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(13), total)
}

func TestReconcile_DetectsDrift(t *testing.T) {
	f := testutil.New(t)
	c := f.Component(t, "Steel")
	f.Receive(t, c.Ref(), "S-1", 10, nil)

	// a primitive without its ledger entry breaks the books
	_, err := f.Inventory.ApplyDelta(f.Ctx, c.Ref(), "S-1", testutil.Qty(-2))
	require.NoError(t, err)

	rec, err := f.Reports.Reconcile(f.Ctx)
	require.NoError(t, err)
	assert.False(t, rec.Balanced)
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, testutil.Qty(8), rec.Lines[0].BatchTotal)
	assert.Equal(t, testutil.Qty(10), rec.Lines[0].LedgerTotal)
}

func TestTraceability(t *testing.T) {
	f := testutil.New(t)
	p, c, lot := busyDay(t, f)

	trace, err := f.Reports.TraceProductLot(f.Ctx, lot)
	require.NoError(t, err)
	assert.Equal(t, p.ID, trace.ProductID)
	require.Len(t, trace.Components, 2)
	assert.Equal(t, "S-1", trace.Components[0].SupplierLotNumber)
	assert.Equal(t, testutil.Qty(10), trace.Components[0].QuantityUsed)
	assert.Equal(t, "S-2", trace.Components[1].SupplierLotNumber)
	assert.Equal(t, testutil.Qty(6), trace.Components[1].QuantityUsed)

	uses, err := f.Reports.TraceComponentLot(f.Ctx, c.ID, "S-2")
	require.NoError(t, err)
	require.Len(t, uses, 1)
	assert.Equal(t, lot, uses[0].ProductLot)
	assert.Equal(t, testutil.Qty(6), uses[0].QuantityUsed)

	uses, err = f.Reports.TraceComponentLot(f.Ctx, c.ID, "S-404")
	require.NoError(t, err)
	assert.Empty(t, uses)
}

func TestLowStock(t *testing.T) {
	f := testutil.New(t)
	low, err := f.Catalog.CreateProduct(f.Ctx, &entity.Product{
		SKU:          "LOW",
		Name:         "Low",
		ReorderPoint: testutil.Qty(5),
		PricingTiers: []entity.PricingTier{{MinQuantity: testutil.Qty(1), UnitPrice: types.MustMoney("1")}},
	})
	require.NoError(t, err)
	ok, err := f.Catalog.CreateProduct(f.Ctx, &entity.Product{
		SKU:          "OK",
		Name:         "Ok",
		ReorderPoint: testutil.Qty(5),
		PricingTiers: []entity.PricingTier{{MinQuantity: testutil.Qty(1), UnitPrice: types.MustMoney("1")}},
	})
	require.NoError(t, err)
	f.Receive(t, low.Ref(), "L", 5, nil)
	f.Receive(t, ok.Ref(), "O", 6, nil)

	levels, err := f.Reports.LowStock(f.Ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "LOW", levels[0].SKU)
	assert.Equal(t, testutil.Qty(5), levels[0].Total)
}

func TestLedger_FilterAndLimit(t *testing.T) {
	f := testutil.New(t)
	busyDay(t, f)

	all, err := f.Reports.Ledger(f.Ctx, ledger.Filter{})
	require.NoError(t, err)

	last, err := f.Reports.Ledger(f.Ctx, ledger.Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, all[len(all)-1].ID, last[1].ID)

	products, err := f.Reports.Ledger(f.Ctx, ledger.Filter{ItemType: entity.ItemTypeProduct})
	require.NoError(t, err)
	for _, e := range products {
		assert.Equal(t, entity.ItemTypeProduct, e.ItemType)
	}

	scrap, err := f.Reports.Ledger(f.Ctx, ledger.Filter{Search: "SCRAP"})
	require.NoError(t, err)
	assert.Len(t, scrap, 1)
}
