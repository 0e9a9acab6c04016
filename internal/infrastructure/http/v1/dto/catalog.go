package dto

import (
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// PricingTierRequest is one price break.
type PricingTierRequest struct {
	MinQuantity types.Quantity `json:"minQuantity" binding:"gte=0"`
	UnitPrice   string         `json:"unitPrice" binding:"required,money"`
}

// BOMLineRequest is one component per produced unit.
type BOMLineRequest struct {
	ComponentID     id.ID          `json:"componentId" binding:"required,gt=0"`
	QuantityPerUnit types.Quantity `json:"quantityPerUnit" binding:"gt=0"`
}

// CreateProductRequest creates a finished good.
type CreateProductRequest struct {
	SKU           string               `json:"sku" binding:"required"`
	Name          string               `json:"name" binding:"required"`
	UnitCost      string               `json:"unitCost" binding:"omitempty,money"`
	ReorderPoint  types.Quantity       `json:"reorderPoint" binding:"gte=0"`
	ShelfLifeDays int                  `json:"shelfLifeDays" binding:"gte=0"`
	PricingTiers  []PricingTierRequest `json:"pricingTiers" binding:"required,min=1,dive"`
	BOM           []BOMLineRequest     `json:"bom" binding:"omitempty,dive"`
}

// ToEntity converts request to domain entity.
func (r *CreateProductRequest) ToEntity() (*entity.Product, error) {
	cost, err := parseMoney("unitCost", r.UnitCost)
	if err != nil {
		return nil, err
	}
	p := &entity.Product{
		SKU:           r.SKU,
		Name:          r.Name,
		UnitCost:      cost,
		ReorderPoint:  r.ReorderPoint,
		ShelfLifeDays: r.ShelfLifeDays,
		BOM:           BOMLines(r.BOM),
	}
	for _, tier := range r.PricingTiers {
		price, err := parseMoney("pricingTiers.unitPrice", tier.UnitPrice)
		if err != nil {
			return nil, err
		}
		p.PricingTiers = append(p.PricingTiers, entity.PricingTier{MinQuantity: tier.MinQuantity, UnitPrice: price})
	}
	return p, nil
}

// CreateComponentRequest creates a raw material.
type CreateComponentRequest struct {
	Name         string         `json:"name" binding:"required"`
	Unit         string         `json:"unit"`
	UnitCost     string         `json:"unitCost" binding:"omitempty,money"`
	ReorderPoint types.Quantity `json:"reorderPoint" binding:"gte=0"`
}

// ToEntity converts request to domain entity.
func (r *CreateComponentRequest) ToEntity() (*entity.Component, error) {
	cost, err := parseMoney("unitCost", r.UnitCost)
	if err != nil {
		return nil, err
	}
	return &entity.Component{
		Name:         r.Name,
		Unit:         r.Unit,
		UnitCost:     cost,
		ReorderPoint: r.ReorderPoint,
	}, nil
}

// SetBOMRequest replaces a product's bill of materials. An empty list clears it.
type SetBOMRequest struct {
	Lines []BOMLineRequest `json:"lines" binding:"dive"`
}

// BOMLines converts request lines.
func BOMLines(lines []BOMLineRequest) []entity.BOMLine {
	out := make([]entity.BOMLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.BOMLine{ComponentID: l.ComponentID, QuantityPerUnit: l.QuantityPerUnit})
	}
	return out
}
