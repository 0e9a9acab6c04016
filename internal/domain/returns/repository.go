// Package returns processes customer returns (RMA) and supplier returns (SRMA).
package returns

import (
	"context"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
)

// Repository defines data access for return requests.
type Repository interface {
	CreateReturn(ctx context.Context, r *entity.Return) error
	UpdateReturn(ctx context.Context, r *entity.Return) error
	GetReturn(ctx context.Context, returnID id.ID) (*entity.Return, error)
	ListReturns(ctx context.Context) ([]entity.Return, error)

	CreateSupplierReturn(ctx context.Context, r *entity.SupplierReturn) error
	UpdateSupplierReturn(ctx context.Context, r *entity.SupplierReturn) error
	GetSupplierReturn(ctx context.Context, returnID id.ID) (*entity.SupplierReturn, error)
	ListSupplierReturns(ctx context.Context) ([]entity.SupplierReturn, error)
}

// OrderReader resolves the order a customer return refers to.
type OrderReader interface {
	Get(ctx context.Context, orderID id.ID) (*entity.Order, error)
}
