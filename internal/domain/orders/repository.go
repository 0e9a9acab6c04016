// Package orders applies allocation plans to sales orders and splits backorders.
package orders

import (
	"context"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
)

// Repository defines data access for sales orders.
type Repository interface {
	// Create assigns an id and stores the order.
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	Get(ctx context.Context, orderID id.ID) (*entity.Order, error)
	List(ctx context.Context, filter Filter) ([]entity.Order, error)
}

// Filter selects orders. Zero values match everything.
type Filter struct {
	Status     entity.OrderStatus
	CustomerID id.ID
}

// Matches reports whether o passes the filter.
func (f Filter) Matches(o entity.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !id.IsNil(f.CustomerID) && o.CustomerID != f.CustomerID {
		return false
	}
	return true
}
