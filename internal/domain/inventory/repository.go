// Package inventory is the batch store: the only owner of stock batches.
package inventory

import (
	"context"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
)

// Repository gives access to the batch arena.
// Every method returns NotFound when the item itself does not exist.
type Repository interface {
	// ListBatches returns the item's batches in insertion order.
	ListBatches(ctx context.Context, ref entity.ItemRef) ([]entity.Batch, error)

	// InsertBatch assigns an arena id and appends the batch to the item.
	InsertBatch(ctx context.Context, ref entity.ItemRef, batch *entity.Batch) error

	// UpdateBatch overwrites a batch in place, keeping its position.
	UpdateBatch(ctx context.Context, ref entity.ItemRef, batch entity.Batch) error

	// DeleteBatch removes a batch from the item and the arena.
	DeleteBatch(ctx context.Context, ref entity.ItemRef, batchID id.ID) error
}
