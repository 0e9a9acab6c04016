package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/types"
)

func TestProduct_PriceFor(t *testing.T) {
	p := &Product{PricingTiers: []PricingTier{
		{MinQuantity: 0, UnitPrice: types.MustMoney("2.50")},
		{MinQuantity: types.NewQuantity(100), UnitPrice: types.MustMoney("2.00")},
		{MinQuantity: types.NewQuantity(50), UnitPrice: types.MustMoney("2.25")},
	}}

	assert.True(t, p.BasePrice().Equal(types.MustMoney("2.50")))
	assert.True(t, p.PriceFor(types.NewQuantity(10)).Equal(types.MustMoney("2.50")))
	assert.True(t, p.PriceFor(types.NewQuantity(60)).Equal(types.MustMoney("2.25")))
	assert.True(t, p.PriceFor(types.NewQuantity(100)).Equal(types.MustMoney("2.00")))
}

func TestProduct_ExpiryFrom(t *testing.T) {
	day := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	p := &Product{ShelfLifeDays: 30}
	exp := p.ExpiryFrom(day)
	require.NotNil(t, exp)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), *exp)

	p.ShelfLifeDays = 0
	assert.Nil(t, p.ExpiryFrom(day))
}

func TestValidateBOM(t *testing.T) {
	err := ValidateBOM([]BOMLine{{ComponentID: 1, QuantityPerUnit: types.MustQuantity("0.4")}})
	assert.NoError(t, err)

	err = ValidateBOM([]BOMLine{{ComponentID: 1, QuantityPerUnit: 0}})
	assert.True(t, apperror.IsValidation(err))

	err = ValidateBOM([]BOMLine{
		{ComponentID: 1, QuantityPerUnit: types.NewQuantity(1)},
		{ComponentID: 1, QuantityPerUnit: types.NewQuantity(2)},
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestOrder_Remaining(t *testing.T) {
	o := &Order{
		Items: []OrderLine{
			{ProductID: 1, Quantity: types.NewQuantity(50)},
			{ProductID: 2, Quantity: types.NewQuantity(5)},
		},
	}
	o.AddFulfilled(1, types.NewQuantity(30))
	o.AddFulfilled(2, types.NewQuantity(5))

	assert.Equal(t, []OrderLine{{ProductID: 1, Quantity: types.NewQuantity(20)}}, o.Remaining())
	assert.False(t, o.IsFullyFulfilled())

	o.AddFulfilled(1, types.NewQuantity(20))
	assert.True(t, o.IsFullyFulfilled())
	assert.Equal(t, types.NewQuantity(50), o.FulfilledQuantity(1))
}

func TestOrder_Validate(t *testing.T) {
	ctx := context.Background()
	o := &Order{CustomerID: 7}
	assert.True(t, apperror.IsValidation(o.Validate(ctx)))

	o.Items = []OrderLine{{ProductID: 1, Quantity: types.NewQuantity(1)}, {ProductID: 1, Quantity: types.NewQuantity(2)}}
	assert.True(t, apperror.IsValidation(o.Validate(ctx)))

	o.Items = o.Items[:1]
	assert.NoError(t, o.Validate(ctx))
}

func TestOrder_CloneIsIndependent(t *testing.T) {
	backorder := int64(9)
	o := Order{Items: []OrderLine{{ProductID: 1, Quantity: 1}}, BackorderID: &backorder}
	c := o.Clone()
	c.Items[0].Quantity = 99
	*c.BackorderID = 10
	assert.Equal(t, types.Quantity(1), o.Items[0].Quantity)
	assert.Equal(t, int64(9), *o.BackorderID)
}

func TestBatch_Status(t *testing.T) {
	b := Batch{LotNumber: "A", Quantity: types.NewQuantity(1)}
	assert.True(t, b.IsSellable())
	assert.NoError(t, b.Validate(context.Background()))

	b.Status = QCReturnedInspection
	assert.False(t, b.IsSellable())

	b.Status = "Lost"
	assert.True(t, apperror.IsValidation(b.Validate(context.Background())))
}
