package memory

import (
	"context"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/billing"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// BillingRepo implements billing.Repository.
type BillingRepo struct{ s *Store }

// Billing returns the credit note and invoice repository.
func (s *Store) Billing() *BillingRepo { return &BillingRepo{s: s} }

var _ billing.Repository = (*BillingRepo)(nil)

func (r *BillingRepo) CreateCreditNote(ctx context.Context, note *entity.CreditNote) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		note.ID = id.ID(st.next(t, seqCreditNotes))
		put(t, st.creditNotes, note.ID, note.Clone())
		t.touch(snapshot.BucketCreditNotes)
		return nil
	})
}

func (r *BillingRepo) UpdateCreditNote(ctx context.Context, note *entity.CreditNote) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.creditNotes[note.ID]; !ok {
			return apperror.NewNotFound("credit note", note.ID)
		}
		put(t, st.creditNotes, note.ID, note.Clone())
		t.touch(snapshot.BucketCreditNotes)
		return nil
	})
}

func (r *BillingRepo) GetCreditNote(ctx context.Context, noteID id.ID) (*entity.CreditNote, error) {
	var out entity.CreditNote
	err := r.s.read(ctx, func(st *state) error {
		n, ok := st.creditNotes[noteID]
		if !ok {
			return apperror.NewNotFound("credit note", noteID)
		}
		out = n.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BillingRepo) ListCreditNotes(ctx context.Context, customerID id.ID) ([]entity.CreditNote, error) {
	var out []entity.CreditNote
	err := r.s.read(ctx, func(st *state) error {
		for _, k := range sortedKeys(st.creditNotes) {
			n := st.creditNotes[k]
			if id.IsNil(customerID) || n.CustomerID == customerID {
				out = append(out, n.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *BillingRepo) CreateInvoice(ctx context.Context, inv *entity.Invoice) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		inv.ID = id.ID(st.next(t, seqInvoices))
		put(t, st.invoices, inv.ID, inv.Clone())
		t.touch(snapshot.BucketInvoices)
		return nil
	})
}

func (r *BillingRepo) UpdateInvoice(ctx context.Context, inv *entity.Invoice) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.invoices[inv.ID]; !ok {
			return apperror.NewNotFound("invoice", inv.ID)
		}
		put(t, st.invoices, inv.ID, inv.Clone())
		t.touch(snapshot.BucketInvoices)
		return nil
	})
}

func (r *BillingRepo) GetInvoice(ctx context.Context, invoiceID id.ID) (*entity.Invoice, error) {
	var out entity.Invoice
	err := r.s.read(ctx, func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return apperror.NewNotFound("invoice", invoiceID)
		}
		out = inv.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BillingRepo) ListInvoices(ctx context.Context, customerID id.ID) ([]entity.Invoice, error) {
	var out []entity.Invoice
	err := r.s.read(ctx, func(st *state) error {
		for _, k := range sortedKeys(st.invoices) {
			inv := st.invoices[k]
			if id.IsNil(customerID) || inv.CustomerID == customerID {
				out = append(out, inv.Clone())
			}
		}
		return nil
	})
	return out, err
}
