// Package testutil builds a fully wired ledger over an in-memory store.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"erpledger/internal/app"
	appctx "erpledger/internal/core/context"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/inventory"
	"erpledger/internal/infrastructure/storage/memory"
)

// Epoch is the default fixture time.
var Epoch = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

// ManualClock is a clock tests move by hand.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current fixture time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Fixture is a ledger wired for tests.
type Fixture struct {
	*app.Services
	Clock *ManualClock
	Ctx   context.Context
}

// New returns a fixture at Epoch acting as user "tester".
func New(t testing.TB) *Fixture {
	t.Helper()
	clk := &ManualClock{now: Epoch}
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "tester"})
	return &Fixture{
		Services: app.New(memory.New(), clk.Now),
		Clock:    clk,
		Ctx:      ctx,
	}
}

// Product creates a product with a base price and optional BOM.
func (f *Fixture) Product(t testing.TB, sku, price string, shelfLifeDays int, bom ...entity.BOMLine) *entity.Product {
	t.Helper()
	p := &entity.Product{
		SKU:           sku,
		Name:          sku,
		UnitCost:      types.Zero(),
		ShelfLifeDays: shelfLifeDays,
		BOM:           bom,
	}
	if price != "" {
		p.PricingTiers = []entity.PricingTier{{MinQuantity: types.NewQuantity(1), UnitPrice: types.MustMoney(price)}}
	}
	created, err := f.Catalog.CreateProduct(f.Ctx, p)
	require.NoError(t, err)
	return created
}

// Component creates a component.
func (f *Fixture) Component(t testing.TB, name string) *entity.Component {
	t.Helper()
	c, err := f.Catalog.CreateComponent(f.Ctx, &entity.Component{Name: name, Unit: "pcs", UnitCost: types.Zero()})
	require.NoError(t, err)
	return c
}

// Receive books a batch into stock through the ledger.
func (f *Fixture) Receive(t testing.TB, ref entity.ItemRef, lot string, qty int64, expiry *time.Time) entity.Batch {
	t.Helper()
	r, err := f.Inventory.ReceiveStock(f.Ctx, inventory.ReceiveInput{
		Ref:        ref,
		LotNumber:  lot,
		Quantity:   types.NewQuantity(qty),
		ExpiryDate: expiry,
	})
	require.NoError(t, err)
	return r.Batch
}

// Date returns a UTC midnight.
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// Qty is shorthand for whole-unit quantities.
func Qty(units int64) types.Quantity { return types.NewQuantity(units) }
