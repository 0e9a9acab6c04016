package entity

import (
	"time"

	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// CorrelationType names the kind of operation that caused a ledger entry.
type CorrelationType string

const (
	CorrelationOrder         CorrelationType = "order"
	CorrelationProduction    CorrelationType = "production"
	CorrelationPurchaseOrder CorrelationType = "purchase_order"
	CorrelationReceipt       CorrelationType = "receipt"
	CorrelationAdjustment    CorrelationType = "adjustment"
	CorrelationQuality       CorrelationType = "quality"
	CorrelationReturn        CorrelationType = "rma"
	CorrelationSupplierRet   CorrelationType = "srma"
)

// LedgerEntry is an immutable record of one stock movement.
// Reason is a display label; lookups use CorrelationType and CorrelationID.
type LedgerEntry struct {
	ID              id.ID           `json:"id"`
	Date            time.Time       `json:"date"`
	ItemType        ItemType        `json:"itemType"`
	ItemID          id.ID           `json:"itemId"`
	LotNumber       string          `json:"lotNumber,omitempty"`
	QuantityChange  types.Quantity  `json:"quantityChange"`
	Reason          string          `json:"reason"`
	CorrelationType CorrelationType `json:"correlationType"`
	CorrelationID   string          `json:"correlationId"`
	UserID          string          `json:"userId"`
}

// Ref returns the item the entry belongs to.
func (e *LedgerEntry) Ref() ItemRef {
	return ItemRef{Type: e.ItemType, ID: e.ItemID}
}
