package entity

import (
	"slices"
	"time"

	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// CreditNoteStatus tracks whether credit is still available.
type CreditNoteStatus string

const (
	CreditNoteOpen    CreditNoteStatus = "open"
	CreditNoteApplied CreditNoteStatus = "applied"
)

// InvoiceStatus tracks settlement of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

// CreditApplication is one settlement of credit against an invoice.
// The same record is appended to both documents.
type CreditApplication struct {
	CreditNoteID id.ID       `json:"creditNoteId"`
	InvoiceID    id.ID       `json:"invoiceId"`
	Amount       types.Money `json:"amount"`
	Date         time.Time   `json:"date"`
}

// CreditNote is customer credit issued for a processed return.
// Amount is the issued value; Remaining only ever decreases.
type CreditNote struct {
	ID           id.ID               `json:"id"`
	Number       string              `json:"number"`
	CustomerID   id.ID               `json:"customerId"`
	ReturnID     id.ID               `json:"returnId"`
	Reason       string              `json:"reason"`
	Amount       types.Money         `json:"amount"`
	Remaining    types.Money         `json:"remaining"`
	Status       CreditNoteStatus    `json:"status"`
	Applications []CreditApplication `json:"applications"`
	IssuedAt     time.Time           `json:"issuedAt"`
}

// Clone returns a deep copy.
func (n CreditNote) Clone() CreditNote {
	n.Applications = slices.Clone(n.Applications)
	return n
}

// InvoiceLine bills a fulfilled quantity at its tier price.
type InvoiceLine struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
	Amount    types.Money    `json:"amount"`
}

// Invoice bills the fulfilled part of an order.
// Total is the outstanding balance, reduced by credit applications.
type Invoice struct {
	ID                 id.ID               `json:"id"`
	Number             string              `json:"number"`
	OrderID            id.ID               `json:"orderId"`
	CustomerID         id.ID               `json:"customerId"`
	Lines              []InvoiceLine       `json:"lines"`
	Amount             types.Money         `json:"amount"`
	Total              types.Money         `json:"total"`
	Status             InvoiceStatus       `json:"status"`
	CreditApplications []CreditApplication `json:"creditApplications"`
	IssuedAt           time.Time           `json:"issuedAt"`
}

// Clone returns a deep copy.
func (inv Invoice) Clone() Invoice {
	inv.Lines = slices.Clone(inv.Lines)
	inv.CreditApplications = slices.Clone(inv.CreditApplications)
	return inv
}
