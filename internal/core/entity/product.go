package entity

import (
	"context"
	"strings"
	"time"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// PricingTier sets the unit price from a minimum order quantity upward.
type PricingTier struct {
	MinQuantity types.Quantity `json:"minQuantity"`
	UnitPrice   types.Money    `json:"unitPrice"`
}

// BOMLine is one component requirement per produced unit.
type BOMLine struct {
	ComponentID     id.ID          `json:"componentId"`
	QuantityPerUnit types.Quantity `json:"quantityPerUnit"`
}

// Product is a finished good. Batches is a read view filled by the store.
type Product struct {
	ID            id.ID          `json:"id"`
	SKU           string         `json:"sku"`
	Name          string         `json:"name"`
	UnitCost      types.Money    `json:"unitCost"`
	ReorderPoint  types.Quantity `json:"reorderPoint"`
	ShelfLifeDays int            `json:"shelfLifeDays"`
	PricingTiers  []PricingTier  `json:"pricingTiers"`
	BOM           []BOMLine      `json:"bom,omitempty"`
	Batches       []Batch        `json:"batches,omitempty"`
}

// Ref returns the product's item reference.
func (p *Product) Ref() ItemRef { return ProductRef(p.ID) }

// BasePrice is the first pricing tier's unit price.
func (p *Product) BasePrice() types.Money {
	if len(p.PricingTiers) == 0 {
		return types.Zero()
	}
	return p.PricingTiers[0].UnitPrice
}

// PriceFor returns the unit price of the highest tier whose minimum is met.
func (p *Product) PriceFor(q types.Quantity) types.Money {
	price := p.BasePrice()
	var best types.Quantity = -1
	for _, tier := range p.PricingTiers {
		if tier.MinQuantity <= q && tier.MinQuantity > best {
			best = tier.MinQuantity
			price = tier.UnitPrice
		}
	}
	return price
}

// ExpiryFrom returns day + ShelfLifeDays, or nil when the product does not expire.
func (p *Product) ExpiryFrom(day time.Time) *time.Time {
	if p.ShelfLifeDays <= 0 {
		return nil
	}
	exp := day.AddDate(0, 0, p.ShelfLifeDays)
	return &exp
}

// Validate implements Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}
	if strings.ContainsAny(p.SKU, " \t") {
		return apperror.NewValidation("sku must not contain whitespace").
			WithDetail("field", "sku")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}
	if p.ReorderPoint.IsNegative() {
		return apperror.NewValidation("reorder point cannot be negative").
			WithDetail("field", "reorderPoint")
	}
	if len(p.PricingTiers) == 0 {
		return apperror.NewValidation("at least one pricing tier is required").
			WithDetail("field", "pricingTiers")
	}
	for i, tier := range p.PricingTiers {
		if tier.MinQuantity.IsNegative() || tier.UnitPrice.IsNegative() {
			return apperror.NewValidation("pricing tier values cannot be negative").
				WithDetail("field", "pricingTiers").
				WithDetail("index", i)
		}
	}
	return ValidateBOM(p.BOM)
}

// ValidateBOM checks line shape only. Component existence is checked by the catalog.
func ValidateBOM(lines []BOMLine) error {
	seen := make(map[id.ID]struct{}, len(lines))
	for i, line := range lines {
		if id.IsNil(line.ComponentID) {
			return apperror.NewValidation("component is required").
				WithDetail("field", "bom").
				WithDetail("index", i)
		}
		if !line.QuantityPerUnit.IsPositive() {
			return apperror.NewValidation("quantity per unit must be positive").
				WithDetail("field", "bom").
				WithDetail("index", i)
		}
		if _, dup := seen[line.ComponentID]; dup {
			return apperror.NewValidation("component listed twice in bill of materials").
				WithDetail("field", "bom").
				WithDetail("componentId", line.ComponentID)
		}
		seen[line.ComponentID] = struct{}{}
	}
	return nil
}

// Component is a raw material consumed by production.
type Component struct {
	ID           id.ID          `json:"id"`
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	UnitCost     types.Money    `json:"unitCost"`
	ReorderPoint types.Quantity `json:"reorderPoint"`
	Batches      []Batch        `json:"batches,omitempty"`
}

// Ref returns the component's item reference.
func (c *Component) Ref() ItemRef { return ComponentRef(c.ID) }

// Validate implements Validatable.
func (c *Component) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}
	if c.ReorderPoint.IsNegative() {
		return apperror.NewValidation("reorder point cannot be negative").
			WithDetail("field", "reorderPoint")
	}
	return nil
}
