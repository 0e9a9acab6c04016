package memory

import (
	"context"
	"slices"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/inventory"
)

// BatchRepo implements inventory.Repository over the batch arena.
type BatchRepo struct{ s *Store }

// Batches returns the batch repository.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{s: s} }

var _ inventory.Repository = (*BatchRepo)(nil)

func (r *BatchRepo) ListBatches(ctx context.Context, ref entity.ItemRef) ([]entity.Batch, error) {
	var out []entity.Batch
	err := r.s.read(ctx, func(st *state) error {
		if !st.itemExists(ref) {
			return apperror.NewNotFound(string(ref.Type), ref.ID)
		}
		out = st.batchesOf(ref)
		return nil
	})
	return out, err
}

func (r *BatchRepo) InsertBatch(ctx context.Context, ref entity.ItemRef, batch *entity.Batch) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if !st.itemExists(ref) {
			return apperror.NewNotFound(string(ref.Type), ref.ID)
		}
		batch.ID = id.ID(st.next(t, seqBatches))
		put(t, st.batches, batch.ID, cloneBatch(*batch))
		ids := st.itemBatches[ref]
		put(t, st.itemBatches, ref, append(slices.Clip(ids), batch.ID))
		t.touch(bucketFor(ref))
		return nil
	})
}

func (r *BatchRepo) UpdateBatch(ctx context.Context, ref entity.ItemRef, batch entity.Batch) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if !st.itemExists(ref) {
			return apperror.NewNotFound(string(ref.Type), ref.ID)
		}
		if !slices.Contains(st.itemBatches[ref], batch.ID) {
			return apperror.NewNotFound("batch", batch.ID)
		}
		put(t, st.batches, batch.ID, cloneBatch(batch))
		t.touch(bucketFor(ref))
		return nil
	})
}

func (r *BatchRepo) DeleteBatch(ctx context.Context, ref entity.ItemRef, batchID id.ID) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if !st.itemExists(ref) {
			return apperror.NewNotFound(string(ref.Type), ref.ID)
		}
		ids := st.itemBatches[ref]
		i := slices.Index(ids, batchID)
		if i < 0 {
			return apperror.NewNotFound("batch", batchID)
		}
		put(t, st.itemBatches, ref, slices.Delete(slices.Clone(ids), i, i+1))
		remove(t, st.batches, batchID)
		t.touch(bucketFor(ref))
		return nil
	})
}
