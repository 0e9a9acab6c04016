package billing

import (
	"context"
	"fmt"
	"strings"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/clock"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/numerator"
	"erpledger/internal/core/tx"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/catalog"
	"erpledger/pkg/logger"
)

// Money amounts on documents are rounded to cents.
const moneyPlaces = 2

// Service issues and settles billing documents.
type Service struct {
	repo    Repository
	orders  OrderStore
	catalog catalog.Reader
	numbers numerator.Generator
	txm     tx.Manager
	clock   clock.Clock
}

// NewService creates the billing service.
func NewService(
	repo Repository,
	orders OrderStore,
	cat catalog.Reader,
	numbers numerator.Generator,
	txm tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		repo:    repo,
		orders:  orders,
		catalog: cat,
		numbers: numbers,
		txm:     txm,
		clock:   clk,
	}
}

// GenerateInvoice bills an order's fulfilled quantities at tier prices.
// An order is invoiced at most once.
func (s *Service) GenerateInvoice(ctx context.Context, orderID id.ID) (*entity.Invoice, error) {
	var inv *entity.Invoice
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if order.InvoiceID != nil {
			return apperror.NewAlreadyExists("invoice", "orderId", order.ID).
				WithDetail("invoiceId", *order.InvoiceID)
		}

		lines := make([]entity.InvoiceLine, 0, len(order.FulfilledItems))
		total := types.Zero()
		for _, item := range order.FulfilledItems {
			if !item.Quantity.IsPositive() {
				continue
			}
			product, err := s.catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			price := product.PriceFor(item.Quantity)
			amount := price.Mul(item.Quantity.Decimal()).Round(moneyPlaces)
			lines = append(lines, entity.InvoiceLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: price,
				Amount:    amount,
			})
			total = total.Add(amount)
		}
		if len(lines) == 0 {
			return apperror.NewValidation("order has no fulfilled items to invoice").
				WithDetail("orderId", order.ID)
		}

		now := s.clock.Now()
		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixInvoice), now)
		if err != nil {
			return fmt.Errorf("invoice number: %w", err)
		}
		inv = &entity.Invoice{
			Number:             number,
			OrderID:            order.ID,
			CustomerID:         order.CustomerID,
			Lines:              lines,
			Amount:             total,
			Total:              total,
			Status:             entity.InvoiceUnpaid,
			CreditApplications: []entity.CreditApplication{},
			IssuedAt:           now,
		}
		if err := s.repo.CreateInvoice(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		invoiceID := inv.ID
		order.InvoiceID = &invoiceID
		if err := s.orders.Update(ctx, order); err != nil {
			return fmt.Errorf("link invoice to order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice generated", "invoice_id", inv.ID, "order_id", orderID, "total", inv.Total.String())
	return inv, nil
}

// CreditNoteInput describes credit owed to a customer.
type CreditNoteInput struct {
	CustomerID id.ID
	ReturnID   id.ID
	Reason     string
	Amount     types.Money
}

// IssueCreditNote creates an open credit note for the full amount.
func (s *Service) IssueCreditNote(ctx context.Context, in CreditNoteInput) (*entity.CreditNote, error) {
	if in.Amount.IsNegative() {
		return nil, apperror.NewValidation("credit amount cannot be negative").
			WithDetail("field", "amount")
	}
	if id.IsNil(in.CustomerID) {
		return nil, apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	var note *entity.CreditNote
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.clock.Now()
		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixCreditNote), now)
		if err != nil {
			return fmt.Errorf("credit note number: %w", err)
		}
		amount := in.Amount.Round(moneyPlaces)
		note = &entity.CreditNote{
			Number:       number,
			CustomerID:   in.CustomerID,
			ReturnID:     in.ReturnID,
			Reason:       strings.TrimSpace(in.Reason),
			Amount:       amount,
			Remaining:    amount,
			Status:       entity.CreditNoteOpen,
			Applications: []entity.CreditApplication{},
			IssuedAt:     now,
		}
		if !amount.IsPositive() {
			note.Status = entity.CreditNoteApplied
		}
		return s.repo.CreateCreditNote(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "credit note issued", "credit_note_id", note.ID, "amount", note.Amount.String())
	return note, nil
}

// Settlement is the outcome of applying credit to an invoice.
type Settlement struct {
	Applied    types.Money       `json:"applied"`
	CreditNote entity.CreditNote `json:"creditNote"`
	Invoice    entity.Invoice    `json:"invoice"`
}

// ApplyCreditToInvoice settles up to amount of the note against the invoice.
//
// The applied value is min(invoice total, amount). Asking for more than the
// note's remaining credit is rejected, so Remaining never goes negative.
func (s *Service) ApplyCreditToInvoice(ctx context.Context, noteID, invoiceID id.ID, amount types.Money) (*Settlement, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	var out Settlement
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		note, err := s.repo.GetCreditNote(ctx, noteID)
		if err != nil {
			return err
		}
		inv, err := s.repo.GetInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}

		if note.Status != entity.CreditNoteOpen {
			return apperror.NewValidation("credit note has no remaining credit").
				WithDetail("creditNoteId", note.ID)
		}
		if inv.Status == entity.InvoicePaid {
			return apperror.NewValidation("invoice is already paid").
				WithDetail("invoiceId", inv.ID)
		}
		if note.CustomerID != inv.CustomerID {
			return apperror.NewValidation("credit note and invoice belong to different customers").
				WithDetail("creditNoteId", note.ID).
				WithDetail("invoiceId", inv.ID)
		}
		if amount.GreaterThan(note.Remaining) {
			return apperror.NewValidation("amount exceeds the credit note's remaining balance").
				WithDetail("field", "amount").
				WithDetail("requested", amount.String()).
				WithDetail("remaining", note.Remaining.String())
		}

		applied := types.MinMoney(inv.Total, amount)
		app := entity.CreditApplication{
			CreditNoteID: note.ID,
			InvoiceID:    inv.ID,
			Amount:       applied,
			Date:         s.clock.Now(),
		}

		inv.Total = inv.Total.Sub(applied)
		inv.CreditApplications = append(inv.CreditApplications, app)
		if !inv.Total.IsPositive() {
			inv.Status = entity.InvoicePaid
		}

		note.Remaining = note.Remaining.Sub(applied)
		note.Applications = append(note.Applications, app)
		if !note.Remaining.IsPositive() {
			note.Status = entity.CreditNoteApplied
		}

		if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		if err := s.repo.UpdateCreditNote(ctx, note); err != nil {
			return fmt.Errorf("update credit note: %w", err)
		}

		out = Settlement{Applied: applied, CreditNote: *note, Invoice: *inv}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "credit applied",
		"credit_note_id", noteID,
		"invoice_id", invoiceID,
		"applied", out.Applied.String(),
		"remaining", out.CreditNote.Remaining.String(),
	)
	return &out, nil
}

func (s *Service) GetInvoice(ctx context.Context, invoiceID id.ID) (*entity.Invoice, error) {
	return s.repo.GetInvoice(ctx, invoiceID)
}

func (s *Service) GetCreditNote(ctx context.Context, noteID id.ID) (*entity.CreditNote, error) {
	return s.repo.GetCreditNote(ctx, noteID)
}

func (s *Service) ListInvoices(ctx context.Context, customerID id.ID) ([]entity.Invoice, error) {
	return s.repo.ListInvoices(ctx, customerID)
}

func (s *Service) ListCreditNotes(ctx context.Context, customerID id.ID) ([]entity.CreditNote, error) {
	return s.repo.ListCreditNotes(ctx, customerID)
}
