// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, not on a concrete store.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
//
// Every mutating use case runs inside exactly one RunInTransaction call:
// either all of its writes become visible or none do.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, every write made through ctx is undone.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn with a consistent view of the data.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
