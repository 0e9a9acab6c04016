package entity

import (
	"context"
	"slices"
	"strings"
	"time"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// ReturnStatus is shared by customer and supplier returns.
type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnProcessed ReturnStatus = "processed"
)

// ReturnLine is a returned product quantity.
type ReturnLine struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// Return is a customer return merchandise authorization (RMA).
type Return struct {
	ID           id.ID        `json:"id"`
	Number       string       `json:"rmaNumber"`
	CustomerID   id.ID        `json:"customerId"`
	OrderID      *id.ID       `json:"orderId,omitempty"`
	Lines        []ReturnLine `json:"lines"`
	Reason       string       `json:"reason"`
	Status       ReturnStatus `json:"status"`
	CreditNoteID *id.ID       `json:"creditNoteId,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	ProcessedAt  *time.Time   `json:"processedAt,omitempty"`
}

// Validate implements Validatable.
func (r *Return) Validate(ctx context.Context) error {
	if id.IsNil(r.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return apperror.NewValidation("return reason is required").
			WithDetail("field", "reason")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("return must have at least one line").
			WithDetail("field", "lines")
	}
	seen := make(map[id.ID]struct{}, len(r.Lines))
	for i, line := range r.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("index", i)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("returned quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("index", i)
		}
		// One batch per line is keyed by product, so a product may appear once.
		if _, dup := seen[line.ProductID]; dup {
			return apperror.NewValidation("product appears on more than one line").
				WithDetail("field", "lines").
				WithDetail("productId", line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy.
func (r Return) Clone() Return {
	r.Lines = slices.Clone(r.Lines)
	r.OrderID = cloneID(r.OrderID)
	r.CreditNoteID = cloneID(r.CreditNoteID)
	if r.ProcessedAt != nil {
		t := *r.ProcessedAt
		r.ProcessedAt = &t
	}
	return r
}

// SupplierReturn sends component stock from one supplier lot back to the supplier (SRMA).
type SupplierReturn struct {
	ID                id.ID          `json:"id"`
	Number            string         `json:"srmaNumber"`
	ComponentID       id.ID          `json:"componentId"`
	SupplierLotNumber string         `json:"supplierLotNumber"`
	Quantity          types.Quantity `json:"quantity"`
	Reason            string         `json:"reason"`
	Status            ReturnStatus   `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	ProcessedAt       *time.Time     `json:"processedAt,omitempty"`
}

// Validate implements Validatable.
func (r *SupplierReturn) Validate(ctx context.Context) error {
	if id.IsNil(r.ComponentID) {
		return apperror.NewValidation("component is required").
			WithDetail("field", "componentId")
	}
	if strings.TrimSpace(r.SupplierLotNumber) == "" {
		return apperror.NewValidation("supplier lot number is required").
			WithDetail("field", "supplierLotNumber")
	}
	if !r.Quantity.IsPositive() {
		return apperror.NewValidation("returned quantity must be positive").
			WithDetail("field", "quantity")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return apperror.NewValidation("return reason is required").
			WithDetail("field", "reason")
	}
	return nil
}
