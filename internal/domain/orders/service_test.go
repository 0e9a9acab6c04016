package orders_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/domain/orders"
	"erpledger/internal/testutil"
)

const customer id.ID = 501

func newOrder(t *testing.T, f *testutil.Fixture, productID id.ID, qty int64) *entity.Order {
	t.Helper()
	o, err := f.Orders.CreateOrder(f.Ctx, orders.CreateInput{
		CustomerID: customer,
		Items:      []entity.OrderLine{{ProductID: productID, Quantity: testutil.Qty(qty)}},
	})
	require.NoError(t, err)
	return o
}

func ship(productID id.ID, lots ...orders.LotAllocation) []orders.LinePlan {
	return []orders.LinePlan{{ProductID: productID, Allocations: lots}}
}

func lot(number string, qty int64) orders.LotAllocation {
	return orders.LotAllocation{LotNumber: number, Quantity: testutil.Qty(qty)}
}

func TestCreateOrder_NumbersAndStatus(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)

	o := newOrder(t, f, p.ID, 5)
	assert.Equal(t, "SO-2026-00001", o.Number)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Empty(t, o.FulfilledItems)

	_, err := f.Orders.CreateOrder(f.Ctx, orders.CreateInput{
		CustomerID: customer,
		Items:      []entity.OrderLine{{ProductID: 999, Quantity: testutil.Qty(1)}},
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestSuggestPlan_FEFO(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "B", 60, testutil.Date(2025, 10, 1))
	f.Receive(t, p.Ref(), "A", 40, testutil.Date(2025, 9, 1))
	o := newOrder(t, f, p.ID, 50)

	s, err := f.Orders.SuggestPlan(f.Ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	plan := s.Lines[0].Plan
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "A", plan.Allocations[0].LotNumber)
	assert.Equal(t, testutil.Qty(40), plan.Allocations[0].Amount)
	assert.Equal(t, "B", plan.Allocations[1].LotNumber)
	assert.Equal(t, testutil.Qty(10), plan.Allocations[1].Amount)
	assert.True(t, plan.Shortfall.IsZero())
}

func TestSuggestPlan_SkipsUnsellable(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "A", 40, testutil.Date(2025, 9, 1))
	f.Receive(t, p.Ref(), "B", 60, testutil.Date(2025, 10, 1))
	_, err := f.Quality.SetStatus(f.Ctx, p.ID, "A", entity.QCReturnedInspection)
	require.NoError(t, err)
	o := newOrder(t, f, p.ID, 50)

	s, err := f.Orders.SuggestPlan(f.Ctx, o.ID)
	require.NoError(t, err)
	plan := s.Lines[0].Plan
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "B", plan.Allocations[0].LotNumber)
	assert.Equal(t, testutil.Qty(50), plan.Allocations[0].Amount)
}

func TestFulfill_Complete(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "A", 40, testutil.Date(2025, 9, 1))
	f.Receive(t, p.Ref(), "B", 60, testutil.Date(2025, 10, 1))
	o := newOrder(t, f, p.ID, 50)

	s, err := f.Orders.SuggestPlan(f.Ctx, o.ID)
	require.NoError(t, err)
	res, err := f.Orders.Fulfill(f.Ctx, o.ID, s.LinePlans(), orders.StrategyPartial)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderCompleted, res.Order.Status)
	assert.Nil(t, res.Backorder)
	require.Len(t, res.Entries, 2)
	for _, e := range res.Entries {
		assert.Equal(t, entity.CorrelationOrder, e.CorrelationType)
		assert.Equal(t, strconv.FormatInt(o.ID, 10), e.CorrelationID)
	}

	batches, err := f.Inventory.Batches(f.Ctx, p.Ref())
	require.NoError(t, err)
	require.Len(t, batches, 1, "lot A is emptied and pruned")
	assert.Equal(t, "B", batches[0].LotNumber)
	assert.Equal(t, testutil.Qty(50), batches[0].Quantity)

	found, err := f.Ledger.Entries(f.Ctx, ledger.Filter{Search: o.Number})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestFulfill_PartialKeepsOrderOpen(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "A", 30, nil)
	o := newOrder(t, f, p.ID, 50)

	res, err := f.Orders.Fulfill(f.Ctx, o.ID, ship(p.ID, lot("A", 30)), orders.StrategyPartial)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderPartiallyFulfilled, res.Order.Status)
	assert.Equal(t, []entity.OrderLine{{ProductID: p.ID, Quantity: testutil.Qty(30)}}, res.Order.FulfilledItems)
	assert.Nil(t, res.Backorder)

	// a later shipment completes it
	f.Receive(t, p.Ref(), "C", 20, nil)
	res, err = f.Orders.Fulfill(f.Ctx, o.ID, ship(p.ID, lot("C", 20)), "")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, res.Order.Status)
}

func TestFulfill_BackorderSplit(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "A", 30, nil)
	o := newOrder(t, f, p.ID, 50)

	res, err := f.Orders.Fulfill(f.Ctx, o.ID, ship(p.ID, lot("A", 30)), orders.StrategyBackorder)
	require.NoError(t, err)
	require.NotNil(t, res.Backorder)

	original, err := f.Orders.GetOrder(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, original.Status)
	assert.Equal(t, []entity.OrderLine{{ProductID: p.ID, Quantity: testutil.Qty(30)}}, original.Items)
	require.NotNil(t, original.BackorderID)
	assert.Equal(t, res.Backorder.ID, *original.BackorderID)

	back, err := f.Orders.GetOrder(f.Ctx, res.Backorder.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderBackorder, back.Status)
	assert.Equal(t, []entity.OrderLine{{ProductID: p.ID, Quantity: testutil.Qty(20)}}, back.Items)
	require.NotNil(t, back.OriginalOrderID)
	assert.Equal(t, o.ID, *back.OriginalOrderID)
	assert.Equal(t, o.CustomerID, back.CustomerID)
	assert.Equal(t, "SO-2026-00002", back.Number)

	// shipped + backordered covers what was originally ordered
	assert.Equal(t, testutil.Qty(50), original.Items[0].Quantity+back.Items[0].Quantity)

	// backorders are fulfillable like any order
	f.Receive(t, p.Ref(), "B", 20, nil)
	res, err = f.Orders.Fulfill(f.Ctx, back.ID, ship(p.ID, lot("B", 20)), orders.StrategyPartial)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, res.Order.Status)
}

func quantities(lines []entity.OrderLine) map[id.ID]types.Quantity {
	out := make(map[id.ID]types.Quantity, len(lines))
	for _, l := range lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}

func TestFulfill_BackorderSplitTwoLines(t *testing.T) {
	f := testutil.New(t)
	widget := f.Product(t, "WIDGET", "2.50", 0)
	gadget := f.Product(t, "GADGET", "7.00", 0)
	f.Receive(t, widget.Ref(), "W-1", 12, nil)
	o, err := f.Orders.CreateOrder(f.Ctx, orders.CreateInput{
		CustomerID: customer,
		Items: []entity.OrderLine{
			{ProductID: widget.ID, Quantity: testutil.Qty(20)},
			{ProductID: gadget.ID, Quantity: testutil.Qty(5)},
		},
	})
	require.NoError(t, err)

	// widget ships partly, gadget not at all
	res, err := f.Orders.Fulfill(f.Ctx, o.ID, ship(widget.ID, lot("W-1", 12)), orders.StrategyBackorder)
	require.NoError(t, err)
	require.NotNil(t, res.Backorder)

	original, err := f.Orders.GetOrder(f.Ctx, o.ID)
	require.NoError(t, err)
	back, err := f.Orders.GetOrder(f.Ctx, res.Backorder.ID)
	require.NoError(t, err)

	shipped := quantities(original.Items)
	backordered := quantities(back.Items)
	assert.Equal(t, map[id.ID]types.Quantity{widget.ID: testutil.Qty(12)}, shipped)
	assert.Equal(t, map[id.ID]types.Quantity{
		widget.ID: testutil.Qty(8),
		gadget.ID: testutil.Qty(5),
	}, backordered)

	for _, line := range o.Items {
		assert.Equal(t, line.Quantity, shipped[line.ProductID]+backordered[line.ProductID], "product %d", line.ProductID)
	}
	assert.Equal(t, shipped, quantities(original.FulfilledItems), "original ships exactly what it keeps")
	assert.Empty(t, back.FulfilledItems)
}

func TestCreateBackorder(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "A", 30, nil)
	o := newOrder(t, f, p.ID, 50)

	_, err := f.Orders.CreateBackorder(f.Ctx, o.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition), "pending orders cannot be split")

	_, err = f.Orders.Fulfill(f.Ctx, o.ID, ship(p.ID, lot("A", 30)), orders.StrategyPartial)
	require.NoError(t, err)

	res, err := f.Orders.CreateBackorder(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, res.Order.Status)
	assert.Equal(t, testutil.Qty(20), res.Backorder.Items[0].Quantity)

	_, err = f.Orders.CreateBackorder(f.Ctx, o.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyExists))
}

func TestFulfill_RejectsBadPlansWithoutSideEffects(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	other := f.Product(t, "GADGET", "9.00", 0)
	f.Receive(t, p.Ref(), "A", 30, nil)
	f.Receive(t, p.Ref(), "Q", 30, nil)
	_, err := f.Quality.SetStatus(f.Ctx, p.ID, "Q", entity.QCReturnedInspection)
	require.NoError(t, err)
	o := newOrder(t, f, p.ID, 50)

	cases := map[string]struct {
		plan  []orders.LinePlan
		check func(error) bool
	}{
		"exceeds batch": {
			plan:  ship(p.ID, lot("A", 31)),
			check: apperror.IsValidation,
		},
		"same lot twice exceeds batch": {
			plan:  ship(p.ID, lot("A", 20), lot("A", 20)),
			check: apperror.IsValidation,
		},
		"exceeds ordered": {
			plan:  ship(p.ID, lot("A", 30), lot("Q", 25)),
			check: apperror.IsValidation,
		},
		"unsellable lot": {
			plan:  ship(p.ID, lot("Q", 5)),
			check: apperror.IsValidation,
		},
		"unknown lot": {
			plan:  ship(p.ID, lot("Z", 5)),
			check: apperror.IsNotFound,
		},
		"product not on order": {
			plan:  ship(other.ID, lot("A", 5)),
			check: apperror.IsValidation,
		},
		"empty plan": {
			plan:  nil,
			check: apperror.IsValidation,
		},
		"zero quantity": {
			plan:  ship(p.ID, lot("A", 0)),
			check: apperror.IsValidation,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.Orders.Fulfill(f.Ctx, o.ID, tc.plan, orders.StrategyPartial)
			require.Error(t, err)
			assert.True(t, tc.check(err), err.Error())
		})
	}

	total, err := f.Inventory.TotalQuantity(f.Ctx, p.Ref())
	require.NoError(t, err)
	assert.Equal(t, testutil.Qty(60), total)

	entries, err := f.Ledger.Entries(f.Ctx, ledger.Filter{CorrelationType: entity.CorrelationOrder})
	require.NoError(t, err)
	assert.Empty(t, entries)

	still, err := f.Orders.GetOrder(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, still.Status)
}

func TestCancelOrder(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	f.Receive(t, p.Ref(), "A", 10, nil)

	o := newOrder(t, f, p.ID, 5)
	cancelled, err := f.Orders.CancelOrder(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, cancelled.Status)

	_, err = f.Orders.Fulfill(f.Ctx, o.ID, ship(p.ID, lot("A", 1)), orders.StrategyPartial)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))

	shipped := newOrder(t, f, p.ID, 5)
	_, err = f.Orders.Fulfill(f.Ctx, shipped.ID, ship(p.ID, lot("A", 2)), orders.StrategyPartial)
	require.NoError(t, err)
	_, err = f.Orders.CancelOrder(f.Ctx, shipped.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestListOrders_Filter(t *testing.T) {
	f := testutil.New(t)
	p := f.Product(t, "WIDGET", "2.50", 0)
	a := newOrder(t, f, p.ID, 1)
	newOrder(t, f, p.ID, 2)
	_, err := f.Orders.CancelOrder(f.Ctx, a.ID)
	require.NoError(t, err)

	pending, err := f.Orders.ListOrders(f.Ctx, orders.Filter{Status: entity.OrderPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := f.Orders.ListOrders(f.Ctx, orders.Filter{CustomerID: customer})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
