package memory

import (
	"context"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/returns"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// ReturnRepo implements returns.Repository.
type ReturnRepo struct{ s *Store }

// Returns returns the RMA and SRMA repository.
func (s *Store) Returns() *ReturnRepo { return &ReturnRepo{s: s} }

var _ returns.Repository = (*ReturnRepo)(nil)

func (r *ReturnRepo) CreateReturn(ctx context.Context, ret *entity.Return) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		ret.ID = id.ID(st.next(t, seqReturns))
		put(t, st.returns, ret.ID, ret.Clone())
		t.touch(snapshot.BucketReturns)
		return nil
	})
}

func (r *ReturnRepo) UpdateReturn(ctx context.Context, ret *entity.Return) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.returns[ret.ID]; !ok {
			return apperror.NewNotFound("return", ret.ID)
		}
		put(t, st.returns, ret.ID, ret.Clone())
		t.touch(snapshot.BucketReturns)
		return nil
	})
}

func (r *ReturnRepo) GetReturn(ctx context.Context, returnID id.ID) (*entity.Return, error) {
	var out entity.Return
	err := r.s.read(ctx, func(st *state) error {
		ret, ok := st.returns[returnID]
		if !ok {
			return apperror.NewNotFound("return", returnID)
		}
		out = ret.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReturnRepo) ListReturns(ctx context.Context) ([]entity.Return, error) {
	var out []entity.Return
	err := r.s.read(ctx, func(st *state) error {
		for _, k := range sortedKeys(st.returns) {
			out = append(out, st.returns[k].Clone())
		}
		return nil
	})
	return out, err
}

func (r *ReturnRepo) CreateSupplierReturn(ctx context.Context, ret *entity.SupplierReturn) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		ret.ID = id.ID(st.next(t, seqSupplierReturns))
		put(t, st.supplierReturns, ret.ID, *ret)
		t.touch(snapshot.BucketSupplierReturns)
		return nil
	})
}

func (r *ReturnRepo) UpdateSupplierReturn(ctx context.Context, ret *entity.SupplierReturn) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.supplierReturns[ret.ID]; !ok {
			return apperror.NewNotFound("supplier return", ret.ID)
		}
		put(t, st.supplierReturns, ret.ID, *ret)
		t.touch(snapshot.BucketSupplierReturns)
		return nil
	})
}

func (r *ReturnRepo) GetSupplierReturn(ctx context.Context, returnID id.ID) (*entity.SupplierReturn, error) {
	var out entity.SupplierReturn
	err := r.s.read(ctx, func(st *state) error {
		ret, ok := st.supplierReturns[returnID]
		if !ok {
			return apperror.NewNotFound("supplier return", returnID)
		}
		out = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReturnRepo) ListSupplierReturns(ctx context.Context) ([]entity.SupplierReturn, error) {
	var out []entity.SupplierReturn
	err := r.s.read(ctx, func(st *state) error {
		for _, k := range sortedKeys(st.supplierReturns) {
			out = append(out, st.supplierReturns[k])
		}
		return nil
	})
	return out, err
}
