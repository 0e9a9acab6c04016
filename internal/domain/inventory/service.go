package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/clock"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/numerator"
	"erpledger/internal/core/tx"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/ledger"
	"erpledger/pkg/logger"
)

// Service is the batch store. The primitives (AddBatch, ApplyDelta,
// SetBatchStatus) write no ledger entries; callers pair them with the
// Recorder inside one transaction. ReceiveStock and AdjustStock are complete
// use cases.
type Service struct {
	repo    Repository
	ledger  *ledger.Recorder
	numbers numerator.Generator
	txm     tx.Manager
	clock   clock.Clock
}

// NewService creates the batch store service.
func NewService(repo Repository, rec *ledger.Recorder, numbers numerator.Generator, txm tx.Manager, clk clock.Clock) *Service {
	return &Service{
		repo:    repo,
		ledger:  rec,
		numbers: numbers,
		txm:     txm,
		clock:   clk,
	}
}

// Batches returns the item's batches in insertion order.
func (s *Service) Batches(ctx context.Context, ref entity.ItemRef) ([]entity.Batch, error) {
	return s.repo.ListBatches(ctx, ref)
}

// GetBatch finds a batch by lot number.
func (s *Service) GetBatch(ctx context.Context, ref entity.ItemRef, lotNumber string) (entity.Batch, error) {
	batches, err := s.repo.ListBatches(ctx, ref)
	if err != nil {
		return entity.Batch{}, err
	}
	for _, b := range batches {
		if b.LotNumber == lotNumber {
			return b, nil
		}
	}
	return entity.Batch{}, apperror.NewNotFound("batch", lotNumber).
		WithDetail("item", ref.String())
}

// TotalQuantity sums the item's batches.
func (s *Service) TotalQuantity(ctx context.Context, ref entity.ItemRef) (types.Quantity, error) {
	batches, err := s.repo.ListBatches(ctx, ref)
	if err != nil {
		return 0, err
	}
	return entity.TotalQuantity(batches), nil
}

// AddBatch appends a new batch. Lot numbers are unique per item.
func (s *Service) AddBatch(ctx context.Context, ref entity.ItemRef, batch entity.Batch) (entity.Batch, error) {
	batch.LotNumber = strings.TrimSpace(batch.LotNumber)
	if ref.Type == entity.ItemTypeComponent {
		batch.Status = ""
	}
	if err := batch.Validate(ctx); err != nil {
		return entity.Batch{}, err
	}

	batches, err := s.repo.ListBatches(ctx, ref)
	if err != nil {
		return entity.Batch{}, err
	}
	for _, b := range batches {
		if b.LotNumber == batch.LotNumber {
			return entity.Batch{}, apperror.NewValidation("a batch with this lot number already exists").
				WithDetail("field", "lotNumber").
				WithDetail("lotNumber", batch.LotNumber).
				WithDetail("item", ref.String())
		}
	}

	batch.ID = 0
	if err := s.repo.InsertBatch(ctx, ref, &batch); err != nil {
		return entity.Batch{}, fmt.Errorf("insert batch: %w", err)
	}
	return batch, nil
}

// ApplyDelta changes one batch's quantity. A negative result is rejected
// with INSUFFICIENT_STOCK; a zero result removes the batch. The returned
// batch carries the new quantity.
func (s *Service) ApplyDelta(ctx context.Context, ref entity.ItemRef, lotNumber string, delta types.Quantity) (entity.Batch, error) {
	if delta.IsZero() {
		return entity.Batch{}, apperror.NewValidation("quantity change must not be zero").
			WithDetail("field", "quantity")
	}

	batch, err := s.GetBatch(ctx, ref, lotNumber)
	if err != nil {
		return entity.Batch{}, err
	}

	next := batch.Quantity + delta
	if next.IsNegative() {
		return entity.Batch{}, apperror.NewInsufficientStock(
			ref.String(), lotNumber, delta.Abs().String(), batch.Quantity.String(),
		)
	}

	batch.Quantity = next
	if next.IsZero() {
		if err := s.repo.DeleteBatch(ctx, ref, batch.ID); err != nil {
			return entity.Batch{}, fmt.Errorf("prune batch: %w", err)
		}
		return batch, nil
	}
	if err := s.repo.UpdateBatch(ctx, ref, batch); err != nil {
		return entity.Batch{}, fmt.Errorf("update batch: %w", err)
	}
	return batch, nil
}

// SetBatchStatus changes a product batch's QC status. Quantity is untouched.
func (s *Service) SetBatchStatus(ctx context.Context, ref entity.ItemRef, lotNumber string, status entity.QCStatus) (entity.Batch, error) {
	if ref.Type != entity.ItemTypeProduct {
		return entity.Batch{}, apperror.NewValidation("QC status applies to product batches only").
			WithDetail("field", "itemType")
	}
	if !status.Valid() {
		return entity.Batch{}, apperror.NewValidation("unknown QC status").
			WithDetail("field", "status").
			WithDetail("value", string(status))
	}

	batch, err := s.GetBatch(ctx, ref, lotNumber)
	if err != nil {
		return entity.Batch{}, err
	}
	batch.Status = status.Normalize()
	if err := s.repo.UpdateBatch(ctx, ref, batch); err != nil {
		return entity.Batch{}, fmt.Errorf("update batch status: %w", err)
	}
	return batch, nil
}

// ReceiveInput describes inbound stock from a supplier or purchase order.
type ReceiveInput struct {
	Ref          entity.ItemRef
	LotNumber    string
	Quantity     types.Quantity
	ExpiryDate   *time.Time
	ReceivedDate *time.Time
	// PurchaseOrder correlates the receipt to a PO number when set.
	PurchaseOrder string
}

// Receipt is the result of a stock receipt.
type Receipt struct {
	Batch entity.Batch       `json:"batch"`
	Entry entity.LedgerEntry `json:"ledgerEntry"`
}

// ReceiveStock creates a batch and records the inbound movement.
func (s *Service) ReceiveStock(ctx context.Context, in ReceiveInput) (*Receipt, error) {
	var out Receipt
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		received := in.ReceivedDate
		if received == nil {
			now := s.clock.Now()
			received = &now
		}
		batch := entity.Batch{
			LotNumber:    in.LotNumber,
			Quantity:     in.Quantity,
			ReceivedDate: received,
		}
		if in.Ref.Type == entity.ItemTypeProduct {
			batch.ExpiryDate = in.ExpiryDate
			batch.Status = entity.QCSellable
		}

		added, err := s.AddBatch(ctx, in.Ref, batch)
		if err != nil {
			return err
		}

		entry := ledger.Entry{
			Ref:             in.Ref,
			LotNumber:       added.LotNumber,
			QuantityChange:  added.Quantity,
			CorrelationType: entity.CorrelationReceipt,
			CorrelationID:   added.LotNumber,
			Reason:          fmt.Sprintf("Stock received, lot %s", added.LotNumber),
		}
		if po := strings.TrimSpace(in.PurchaseOrder); po != "" {
			entry.CorrelationType = entity.CorrelationPurchaseOrder
			entry.CorrelationID = po
			entry.Reason = fmt.Sprintf("Purchase order %s received, lot %s", po, added.LotNumber)
		}
		recorded, err := s.ledger.Record(ctx, entry)
		if err != nil {
			return err
		}

		out = Receipt{Batch: added, Entry: recorded}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock received",
		"item", in.Ref.String(),
		"lot", out.Batch.LotNumber,
		"quantity", out.Batch.Quantity.String(),
	)
	return &out, nil
}

// AdjustInput is a manual stock correction.
type AdjustInput struct {
	Ref       entity.ItemRef
	LotNumber string
	// Delta is signed: positive adds, negative removes.
	Delta  types.Quantity
	Reason string
	// ExpiryDate is used only when a positive adjustment opens a new lot.
	ExpiryDate *time.Time
}

// Adjustment is the result of a manual correction.
type Adjustment struct {
	Number string             `json:"number"`
	Batch  entity.Batch       `json:"batch"`
	Entry  entity.LedgerEntry `json:"ledgerEntry"`
}

// AdjustStock applies a manual add/remove with a mandatory reason.
// Removing more than a batch holds fails and writes nothing.
func (s *Service) AdjustStock(ctx context.Context, in AdjustInput) (*Adjustment, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, apperror.NewValidation("adjustment reason is required").
			WithDetail("field", "reason")
	}
	if in.Delta.IsZero() {
		return nil, apperror.NewValidation("quantity change must not be zero").
			WithDetail("field", "quantity")
	}

	var out Adjustment
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var (
			batch entity.Batch
			err   error
		)
		_, lookupErr := s.GetBatch(ctx, in.Ref, in.LotNumber)
		switch {
		case lookupErr == nil:
			batch, err = s.ApplyDelta(ctx, in.Ref, in.LotNumber, in.Delta)
		case apperror.IsNotFound(lookupErr) && in.Delta.IsPositive():
			now := s.clock.Now()
			nb := entity.Batch{LotNumber: in.LotNumber, Quantity: in.Delta, ReceivedDate: &now}
			if in.Ref.Type == entity.ItemTypeProduct {
				nb.ExpiryDate = in.ExpiryDate
				nb.Status = entity.QCSellable
			}
			batch, err = s.AddBatch(ctx, in.Ref, nb)
		default:
			err = lookupErr
		}
		if err != nil {
			return err
		}

		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixAdjustment), s.clock.Now())
		if err != nil {
			return fmt.Errorf("adjustment number: %w", err)
		}

		entry, err := s.ledger.Record(ctx, ledger.Entry{
			Ref:             in.Ref,
			LotNumber:       in.LotNumber,
			QuantityChange:  in.Delta,
			Reason:          fmt.Sprintf("Manual adjustment %s: %s", number, strings.TrimSpace(in.Reason)),
			CorrelationType: entity.CorrelationAdjustment,
			CorrelationID:   number,
		})
		if err != nil {
			return err
		}

		out = Adjustment{Number: number, Batch: batch, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"number", out.Number,
		"item", in.Ref.String(),
		"lot", in.LotNumber,
		"delta", in.Delta.String(),
	)
	return &out, nil
}
