package ledger

import (
	"context"
	"fmt"

	"erpledger/internal/core/clock"
	appctx "erpledger/internal/core/context"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/types"
	"erpledger/pkg/logger"
)

// Entry is what callers supply; the Recorder adds id, date and actor.
type Entry struct {
	Ref             entity.ItemRef
	LotNumber       string
	QuantityChange  types.Quantity
	Reason          string
	CorrelationType entity.CorrelationType
	CorrelationID   string
}

// Recorder is the only component that assigns ledger ids.
// It accepts any well-formed entry; business rules are the caller's job.
type Recorder struct {
	repo  Repository
	clock clock.Clock
}

// NewRecorder creates a ledger recorder.
func NewRecorder(repo Repository, clk clock.Clock) *Recorder {
	return &Recorder{repo: repo, clock: clk}
}

// Record appends one entry and returns it as stored.
func (r *Recorder) Record(ctx context.Context, in Entry) (entity.LedgerEntry, error) {
	nextID, err := r.repo.NextID(ctx)
	if err != nil {
		return entity.LedgerEntry{}, fmt.Errorf("next ledger id: %w", err)
	}

	entry := entity.LedgerEntry{
		ID:              nextID,
		Date:            r.clock.Now(),
		ItemType:        in.Ref.Type,
		ItemID:          in.Ref.ID,
		LotNumber:       in.LotNumber,
		QuantityChange:  in.QuantityChange,
		Reason:          in.Reason,
		CorrelationType: in.CorrelationType,
		CorrelationID:   in.CorrelationID,
		UserID:          appctx.ActorID(ctx),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		return entity.LedgerEntry{}, fmt.Errorf("append ledger entry: %w", err)
	}

	logger.Debug(appctx.WithCorrelation(ctx, string(in.CorrelationType), in.CorrelationID), "ledger entry recorded",
		"ledger_id", entry.ID,
		"item", in.Ref.String(),
		"lot", in.LotNumber,
		"change", in.QuantityChange.String(),
	)
	return entry, nil
}

// Entries lists entries matching the filter.
func (r *Recorder) Entries(ctx context.Context, filter Filter) ([]entity.LedgerEntry, error) {
	return r.repo.List(ctx, filter)
}

// Balance sums quantity changes for an item.
func (r *Recorder) Balance(ctx context.Context, ref entity.ItemRef) (types.Quantity, error) {
	entries, err := r.repo.List(ctx, Filter{Ref: &ref})
	if err != nil {
		return 0, err
	}
	var total types.Quantity
	for _, e := range entries {
		total += e.QuantityChange
	}
	return total, nil
}
