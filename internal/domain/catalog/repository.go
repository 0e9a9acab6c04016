// Package catalog manages products, components and bills of materials.
package catalog

import (
	"context"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
)

// Reader is the read side other services depend on.
// Returned items carry their current batches.
type Reader interface {
	GetProduct(ctx context.Context, productID id.ID) (*entity.Product, error)
	GetComponent(ctx context.Context, componentID id.ID) (*entity.Component, error)
}

// Repository defines data access for catalog items.
type Repository interface {
	Reader

	// CreateProduct assigns an id and stores the product (batches ignored).
	CreateProduct(ctx context.Context, p *entity.Product) error

	// UpdateProduct replaces product attributes; batches are untouched.
	UpdateProduct(ctx context.Context, p *entity.Product) error

	// GetProductBySKU returns NotFound when the SKU is unknown.
	GetProductBySKU(ctx context.Context, sku string) (*entity.Product, error)

	ListProducts(ctx context.Context) ([]entity.Product, error)

	// CreateComponent assigns an id and stores the component.
	CreateComponent(ctx context.Context, c *entity.Component) error

	ListComponents(ctx context.Context) ([]entity.Component, error)
}
