// Package entity holds the ledger engine's records: catalog items, batches,
// ledger entries, orders, production runs, returns and settlement documents.
package entity

import (
	"context"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without store access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}
