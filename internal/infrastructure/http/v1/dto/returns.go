package dto

import (
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/returns"
)

// ReturnLineRequest is one returned product.
type ReturnLineRequest struct {
	ProductID id.ID          `json:"productId" binding:"required,gt=0"`
	Quantity  types.Quantity `json:"quantity" binding:"gt=0"`
}

// CreateReturnRequest opens a customer RMA.
type CreateReturnRequest struct {
	CustomerID id.ID               `json:"customerId" binding:"required,gt=0"`
	OrderID    *id.ID              `json:"orderId" binding:"omitempty,gt=0"`
	Lines      []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
	Reason     string              `json:"reason" binding:"required"`
}

// ToInput converts the request.
func (r *CreateReturnRequest) ToInput() returns.CreateReturnInput {
	in := returns.CreateReturnInput{CustomerID: r.CustomerID, OrderID: r.OrderID, Reason: r.Reason}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, entity.ReturnLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return in
}

// CreateSupplierReturnRequest opens an SRMA for a component lot.
type CreateSupplierReturnRequest struct {
	ComponentID       id.ID          `json:"componentId" binding:"required,gt=0"`
	SupplierLotNumber string         `json:"supplierLotNumber" binding:"required"`
	Quantity          types.Quantity `json:"quantity" binding:"gt=0"`
	Reason            string         `json:"reason" binding:"required"`
}

// ToInput converts the request.
func (r *CreateSupplierReturnRequest) ToInput() returns.CreateSupplierReturnInput {
	return returns.CreateSupplierReturnInput{
		ComponentID:       r.ComponentID,
		SupplierLotNumber: r.SupplierLotNumber,
		Quantity:          r.Quantity,
		Reason:            r.Reason,
	}
}

// ApplyCreditRequest settles credit against an invoice.
type ApplyCreditRequest struct {
	InvoiceID id.ID  `json:"invoiceId" binding:"required,gt=0"`
	Amount    string `json:"amount" binding:"required,money"`
}

// ParsedAmount returns the amount as money.
func (r *ApplyCreditRequest) ParsedAmount() (types.Money, error) {
	return parseMoney("amount", r.Amount)
}
