// Package production converts component stock into finished-goods batches.
package production

import (
	"context"
	"time"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
)

// Repository stores immutable production records.
type Repository interface {
	// Create assigns an id and stores the record.
	Create(ctx context.Context, order *entity.ProductionOrder) error

	// CountForProductOn counts runs of the product on the calendar day of day.
	CountForProductOn(ctx context.Context, productID id.ID, day time.Time) (int, error)

	// List returns records in id order, optionally for one product (0 = all).
	List(ctx context.Context, productID id.ID) ([]entity.ProductionOrder, error)

	// FindByLot returns the run that produced a lot, or NotFound.
	FindByLot(ctx context.Context, lotNumber string) (*entity.ProductionOrder, error)
}
