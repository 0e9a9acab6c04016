// Package ledger provides the append-only journal of inventory movements.
package ledger

import (
	"context"
	"strings"
	"time"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
)

// Repository stores ledger entries. Entries are never updated or deleted.
type Repository interface {
	// NextID returns the next monotonic ledger id.
	NextID(ctx context.Context) (id.ID, error)

	// Append stores a fully built entry.
	Append(ctx context.Context, entry entity.LedgerEntry) error

	// List returns entries matching the filter in id order.
	List(ctx context.Context, filter Filter) ([]entity.LedgerEntry, error)
}

// Filter selects ledger entries. Zero values match everything.
type Filter struct {
	Ref             *entity.ItemRef
	ItemType        entity.ItemType
	CorrelationType entity.CorrelationType
	CorrelationID   string
	LotNumber       string
	// Search is a case-insensitive substring over reason, correlation id and lot.
	Search string
	From   *time.Time
	To     *time.Time
	// Limit keeps only the newest N matches. 0 means no limit.
	Limit int
}

// Matches reports whether e passes every set criterion except Limit.
func (f Filter) Matches(e entity.LedgerEntry) bool {
	if f.Ref != nil && e.Ref() != *f.Ref {
		return false
	}
	if f.ItemType != "" && e.ItemType != f.ItemType {
		return false
	}
	if f.CorrelationType != "" && e.CorrelationType != f.CorrelationType {
		return false
	}
	if f.CorrelationID != "" && e.CorrelationID != f.CorrelationID {
		return false
	}
	if f.LotNumber != "" && e.LotNumber != f.LotNumber {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := strings.ToLower(e.Reason + "\x00" + e.CorrelationID + "\x00" + e.LotNumber)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

// ApplyLimit keeps the last f.Limit entries.
func (f Filter) ApplyLimit(entries []entity.LedgerEntry) []entity.LedgerEntry {
	if f.Limit > 0 && len(entries) > f.Limit {
		return entries[len(entries)-f.Limit:]
	}
	return entries
}
