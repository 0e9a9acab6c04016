package memory

import (
	"context"
	"slices"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// LedgerRepo implements ledger.Repository as an append-only slice.
type LedgerRepo struct{ s *Store }

// Ledger returns the ledger repository.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

var _ ledger.Repository = (*LedgerRepo)(nil)

func (r *LedgerRepo) NextID(ctx context.Context) (id.ID, error) {
	var next id.ID
	err := r.s.write(ctx, func(st *state, t *txState) error {
		next = id.ID(st.next(t, seqLedger))
		return nil
	})
	return next, err
}

func (r *LedgerRepo) Append(ctx context.Context, entry entity.LedgerEntry) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		n := len(st.ledger)
		st.ledger = append(st.ledger, entry)
		t.record(func() { st.ledger = st.ledger[:n] })
		t.touch(snapshot.BucketLedger)
		return nil
	})
}

func (r *LedgerRepo) List(ctx context.Context, filter ledger.Filter) ([]entity.LedgerEntry, error) {
	var out []entity.LedgerEntry
	err := r.s.read(ctx, func(st *state) error {
		for _, e := range st.ledger {
			if filter.Matches(e) {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(filter.ApplyLimit(out)), nil
}
