// Package billing issues invoices and credit notes and settles one against the other.
package billing

import (
	"context"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
)

// Repository defines data access for settlement documents.
type Repository interface {
	CreateCreditNote(ctx context.Context, note *entity.CreditNote) error
	UpdateCreditNote(ctx context.Context, note *entity.CreditNote) error
	GetCreditNote(ctx context.Context, noteID id.ID) (*entity.CreditNote, error)
	// ListCreditNotes returns notes of one customer, or all when customerID is 0.
	ListCreditNotes(ctx context.Context, customerID id.ID) ([]entity.CreditNote, error)

	CreateInvoice(ctx context.Context, inv *entity.Invoice) error
	UpdateInvoice(ctx context.Context, inv *entity.Invoice) error
	GetInvoice(ctx context.Context, invoiceID id.ID) (*entity.Invoice, error)
	// ListInvoices returns invoices of one customer, or all when customerID is 0.
	ListInvoices(ctx context.Context, customerID id.ID) ([]entity.Invoice, error)
}

// OrderStore is the part of the order repository invoicing needs.
type OrderStore interface {
	Get(ctx context.Context, orderID id.ID) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
}
