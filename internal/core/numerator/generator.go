package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// Implementations must take part in the caller's transaction so that a
// rolled back use case does not burn a number.
type Generator interface {
	// GetNextNumber generates the next document number for the period.
	// Pattern with DefaultConfig: PREFIX-YEAR-XXXXX (e.g., INV-2024-00001)
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)
}
