package entity

import (
	"fmt"

	"erpledger/internal/core/id"
)

// ItemType distinguishes sellable products from production components.
type ItemType string

const (
	ItemTypeProduct   ItemType = "product"
	ItemTypeComponent ItemType = "component"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeProduct || t == ItemTypeComponent
}

// ItemRef identifies a stock-carrying item.
type ItemRef struct {
	Type ItemType `json:"itemType"`
	ID   id.ID    `json:"itemId"`
}

// ProductRef returns a reference to a product.
func ProductRef(productID id.ID) ItemRef {
	return ItemRef{Type: ItemTypeProduct, ID: productID}
}

// ComponentRef returns a reference to a component.
func ComponentRef(componentID id.ID) ItemRef {
	return ItemRef{Type: ItemTypeComponent, ID: componentID}
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s #%d", r.Type, r.ID)
}
