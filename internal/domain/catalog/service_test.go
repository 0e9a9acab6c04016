package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/internal/testutil"
)

func tiers() []entity.PricingTier {
	return []entity.PricingTier{{MinQuantity: testutil.Qty(1), UnitPrice: types.MustMoney("4.00")}}
}

func TestCreateProduct_SKUIsUnique(t *testing.T) {
	f := testutil.New(t)
	f.Product(t, "FRAME", "4.00", 0)

	_, err := f.Catalog.CreateProduct(f.Ctx, &entity.Product{SKU: " FRAME ", Name: "Other", UnitCost: types.Zero(), PricingTiers: tiers()})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyExists))
}

func TestCreateProduct_RejectsWhitespaceInSKU(t *testing.T) {
	f := testutil.New(t)

	_, err := f.Catalog.CreateProduct(f.Ctx, &entity.Product{SKU: "BIKE FRAME", Name: "Frame", UnitCost: types.Zero()})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateProduct_UnknownBOMComponent(t *testing.T) {
	f := testutil.New(t)

	_, err := f.Catalog.CreateProduct(f.Ctx, &entity.Product{
		SKU:          "FRAME",
		Name:         "Frame",
		UnitCost:     types.Zero(),
		PricingTiers: tiers(),
		BOM:          []entity.BOMLine{{ComponentID: 99, QuantityPerUnit: testutil.Qty(1)}},
	})
	assert.True(t, apperror.IsValidation(err))

	products, err := f.Catalog.ListProducts(f.Ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSetBOM_ReplacesLines(t *testing.T) {
	f := testutil.New(t)
	steel := f.Component(t, "Steel")
	bolt := f.Component(t, "Bolt")
	p := f.Product(t, "FRAME", "4.00", 0, entity.BOMLine{ComponentID: steel.ID, QuantityPerUnit: testutil.Qty(2)})

	updated, err := f.Catalog.SetBOM(f.Ctx, p.ID, []entity.BOMLine{{ComponentID: bolt.ID, QuantityPerUnit: testutil.Qty(4)}})
	require.NoError(t, err)
	require.Len(t, updated.BOM, 1)
	assert.Equal(t, bolt.ID, updated.BOM[0].ComponentID)

	got, err := f.Catalog.GetProduct(f.Ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.BOM, got.BOM)
}

func TestSetBOM_UnknownProduct(t *testing.T) {
	f := testutil.New(t)
	steel := f.Component(t, "Steel")

	_, err := f.Catalog.SetBOM(f.Ctx, 42, []entity.BOMLine{{ComponentID: steel.ID, QuantityPerUnit: testutil.Qty(1)}})
	assert.True(t, apperror.IsNotFound(err))
}
