package entity

import (
	"context"
	"slices"
	"time"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// OrderStatus is the fulfillment state of a sales order.
type OrderStatus string

const (
	OrderPending            OrderStatus = "pending"
	OrderPartiallyFulfilled OrderStatus = "partially fulfilled"
	OrderCompleted          OrderStatus = "completed"
	OrderBackorder          OrderStatus = "backorder"
	OrderCancelled          OrderStatus = "cancelled"
)

// CanFulfill reports whether stock may still be shipped against the order.
func (s OrderStatus) CanFulfill() bool {
	return s == OrderPending || s == OrderPartiallyFulfilled || s == OrderBackorder
}

// OrderLine is a product quantity on an order.
type OrderLine struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// Order is a customer sales order.
type Order struct {
	ID              id.ID       `json:"id"`
	Number          string      `json:"number"`
	CustomerID      id.ID       `json:"customerId"`
	AgentID         id.ID       `json:"agentId,omitempty"`
	Date            time.Time   `json:"date"`
	Status          OrderStatus `json:"status"`
	Items           []OrderLine `json:"items"`
	FulfilledItems  []OrderLine `json:"fulfilledItems"`
	BackorderID     *id.ID      `json:"backorderId,omitempty"`
	OriginalOrderID *id.ID      `json:"originalOrderId,omitempty"`
	InvoiceID       *id.ID      `json:"invoiceId,omitempty"`
}

// Validate implements Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("order must have at least one line").
			WithDetail("field", "items")
	}
	seen := make(map[id.ID]struct{}, len(o.Items))
	for i, line := range o.Items {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
		if _, dup := seen[line.ProductID]; dup {
			return apperror.NewValidation("product appears on more than one line").
				WithDetail("field", "items").
				WithDetail("productId", line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// OrderedQuantity returns the ordered quantity of a product (0 if absent).
func (o *Order) OrderedQuantity(productID id.ID) types.Quantity {
	return lineQuantity(o.Items, productID)
}

// FulfilledQuantity returns the cumulative shipped quantity of a product.
func (o *Order) FulfilledQuantity(productID id.ID) types.Quantity {
	return lineQuantity(o.FulfilledItems, productID)
}

// HasProduct reports whether the order has a line for productID.
func (o *Order) HasProduct(productID id.ID) bool {
	for _, line := range o.Items {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

// AddFulfilled accumulates a shipped quantity, keeping order line ordering.
func (o *Order) AddFulfilled(productID id.ID, q types.Quantity) {
	for i := range o.FulfilledItems {
		if o.FulfilledItems[i].ProductID == productID {
			o.FulfilledItems[i].Quantity += q
			return
		}
	}
	o.FulfilledItems = append(o.FulfilledItems, OrderLine{ProductID: productID, Quantity: q})
}

// Remaining lists the unshipped quantity per line, skipping covered lines.
func (o *Order) Remaining() []OrderLine {
	var out []OrderLine
	for _, line := range o.Items {
		rest := line.Quantity - o.FulfilledQuantity(line.ProductID)
		if rest.IsPositive() {
			out = append(out, OrderLine{ProductID: line.ProductID, Quantity: rest})
		}
	}
	return out
}

// IsFullyFulfilled reports whether every line's shipped quantity covers the ordered quantity.
func (o *Order) IsFullyFulfilled() bool {
	return len(o.Remaining()) == 0
}

// Clone returns a deep copy safe to mutate.
func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	o.FulfilledItems = slices.Clone(o.FulfilledItems)
	o.BackorderID = cloneID(o.BackorderID)
	o.OriginalOrderID = cloneID(o.OriginalOrderID)
	o.InvoiceID = cloneID(o.InvoiceID)
	return o
}

func lineQuantity(lines []OrderLine, productID id.ID) types.Quantity {
	for _, line := range lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

func cloneID(v *id.ID) *id.ID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
