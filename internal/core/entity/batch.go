package entity

import (
	"context"
	"strings"
	"time"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// QCStatus is the quality-control state of a product batch.
type QCStatus string

const (
	QCSellable           QCStatus = "Sellable"
	QCReturnedInspection QCStatus = "Returned - Inspection Required"
	QCQuarantined        QCStatus = "Quarantined"
)

// Normalize maps the unset status to Sellable.
func (s QCStatus) Normalize() QCStatus {
	if s == "" {
		return QCSellable
	}
	return s
}

// Valid reports whether s is a known status (unset counts as Sellable).
func (s QCStatus) Valid() bool {
	switch s.Normalize() {
	case QCSellable, QCReturnedInspection, QCQuarantined:
		return true
	}
	return false
}

// Batch is a lot of one item received or produced together.
// For components LotNumber holds the supplier lot number and Status is unused.
type Batch struct {
	// ID is the arena key assigned by the store.
	ID           id.ID          `json:"id"`
	LotNumber    string         `json:"lotNumber"`
	Quantity     types.Quantity `json:"quantity"`
	ExpiryDate   *time.Time     `json:"expiryDate,omitempty"`
	ReceivedDate *time.Time     `json:"receivedDate,omitempty"`
	Status       QCStatus       `json:"status,omitempty"`
}

// EffectiveStatus returns the QC status with the default applied.
func (b Batch) EffectiveStatus() QCStatus {
	return b.Status.Normalize()
}

// IsSellable reports whether the batch may be allocated to customer orders.
func (b Batch) IsSellable() bool {
	return b.EffectiveStatus() == QCSellable
}

// Validate implements Validatable.
func (b *Batch) Validate(ctx context.Context) error {
	if strings.TrimSpace(b.LotNumber) == "" {
		return apperror.NewValidation("lot number is required").
			WithDetail("field", "lotNumber")
	}
	if !b.Quantity.IsPositive() {
		return apperror.NewValidation("batch quantity must be positive").
			WithDetail("field", "quantity")
	}
	if !b.Status.Valid() {
		return apperror.NewValidation("unknown QC status").
			WithDetail("field", "status").
			WithDetail("value", string(b.Status))
	}
	return nil
}

// TotalQuantity sums batch quantities.
func TotalQuantity(batches []Batch) types.Quantity {
	var total types.Quantity
	for _, b := range batches {
		total += b.Quantity
	}
	return total
}
