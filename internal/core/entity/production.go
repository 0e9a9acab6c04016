package entity

import (
	"slices"
	"time"

	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// ComponentUsage records consumption from one supplier lot.
type ComponentUsage struct {
	ComponentID       id.ID          `json:"componentId"`
	QuantityUsed      types.Quantity `json:"quantityUsed"`
	SupplierLotNumber string         `json:"supplierLotNumber"`
}

// ProductionOrder is the immutable record of a successful production run.
type ProductionOrder struct {
	ID               id.ID            `json:"id"`
	ProductID        id.ID            `json:"productId"`
	LotNumber        string           `json:"lotNumber"`
	QuantityProduced types.Quantity   `json:"quantityProduced"`
	Date             time.Time        `json:"date"`
	ComponentsUsed   []ComponentUsage `json:"componentsUsed"`
}

// Clone returns a deep copy.
func (p ProductionOrder) Clone() ProductionOrder {
	p.ComponentsUsed = slices.Clone(p.ComponentsUsed)
	return p
}

// UsesComponentLot reports whether the run drew from the given supplier lot.
func (p *ProductionOrder) UsesComponentLot(componentID id.ID, lot string) bool {
	for _, u := range p.ComponentsUsed {
		if u.ComponentID == componentID && u.SupplierLotNumber == lot {
			return true
		}
	}
	return false
}
