// Package id provides identifiers for ledger entities.
// Entities use monotonic int64 sequences assigned by the store; request and
// trace identifiers use UUIDv7.
package id

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ID is a store-assigned sequence value. Zero means "not assigned".
type ID = int64

// Parse converts a path or query parameter to ID.
func Parse(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("parse id %q: must be positive", s)
	}
	return v, nil
}

// IsNil checks if ID is unassigned.
func IsNil(v ID) bool {
	return v == 0
}

// NewUUID generates a time-ordered UUIDv7 string for request correlation.
func NewUUID() string {
	u, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.NewString()
	}
	return u.String()
}
