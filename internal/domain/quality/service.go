package quality

import (
	"context"
	"fmt"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/tx"
	"erpledger/internal/domain/inventory"
	"erpledger/internal/domain/ledger"
	"erpledger/pkg/logger"
)

// Service applies inspector decisions to batches.
type Service struct {
	stock  *inventory.Service
	ledger *ledger.Recorder
	txm    tx.Manager
}

// NewService creates the QC service.
func NewService(stock *inventory.Service, rec *ledger.Recorder, txm tx.Manager) *Service {
	return &Service{stock: stock, ledger: rec, txm: txm}
}

// Transition is the outcome of a status change.
type Transition struct {
	Batch entity.Batch       `json:"batch"`
	From  entity.QCStatus    `json:"from"`
	To    entity.QCStatus    `json:"to"`
	Entry entity.LedgerEntry `json:"ledgerEntry"`
}

// SetStatus moves a product batch to a new QC status and records a
// zero-quantity ledger entry naming the old and new status.
func (s *Service) SetStatus(ctx context.Context, productID id.ID, lotNumber string, to entity.QCStatus) (*Transition, error) {
	if !to.Valid() {
		return nil, apperror.NewValidation("unknown QC status").
			WithDetail("field", "status").
			WithDetail("value", string(to))
	}
	to = to.Normalize()
	ref := entity.ProductRef(productID)

	var out Transition
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.stock.GetBatch(ctx, ref, lotNumber)
		if err != nil {
			return err
		}
		from := current.EffectiveStatus()
		if !CanTransition(from, to) {
			return apperror.NewInvalidTransition("batch", string(from), string(to)).
				WithDetail("lotNumber", lotNumber)
		}

		batch, err := s.stock.SetBatchStatus(ctx, ref, lotNumber, to)
		if err != nil {
			return err
		}
		entry, err := s.ledger.Record(ctx, ledger.Entry{
			Ref:             ref,
			LotNumber:       lotNumber,
			QuantityChange:  0,
			Reason:          fmt.Sprintf("QC status %s → %s", from, to),
			CorrelationType: entity.CorrelationQuality,
			CorrelationID:   lotNumber,
		})
		if err != nil {
			return err
		}
		out = Transition{Batch: batch, From: from, To: to, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "QC status changed",
		"product_id", productID,
		"lot", lotNumber,
		"from", string(out.From),
		"to", string(out.To),
	)
	return &out, nil
}
