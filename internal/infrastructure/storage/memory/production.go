package memory

import (
	"context"
	"time"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/production"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// ProductionRepo implements production.Repository.
type ProductionRepo struct{ s *Store }

// Production returns the production record repository.
func (s *Store) Production() *ProductionRepo { return &ProductionRepo{s: s} }

var _ production.Repository = (*ProductionRepo)(nil)

func (r *ProductionRepo) Create(ctx context.Context, order *entity.ProductionOrder) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		order.ID = id.ID(st.next(t, seqProductionOrders))
		put(t, st.production, order.ID, order.Clone())
		t.touch(snapshot.BucketProductionOrders)
		return nil
	})
}

func (r *ProductionRepo) CountForProductOn(ctx context.Context, productID id.ID, day time.Time) (int, error) {
	y, m, d := day.Date()
	n := 0
	err := r.s.read(ctx, func(st *state) error {
		for _, p := range st.production {
			py, pm, pd := p.Date.In(day.Location()).Date()
			if p.ProductID == productID && py == y && pm == m && pd == d {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductionRepo) List(ctx context.Context, productID id.ID) ([]entity.ProductionOrder, error) {
	var out []entity.ProductionOrder
	err := r.s.read(ctx, func(st *state) error {
		for _, k := range sortedKeys(st.production) {
			p := st.production[k]
			if id.IsNil(productID) || p.ProductID == productID {
				out = append(out, p.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductionRepo) FindByLot(ctx context.Context, lotNumber string) (*entity.ProductionOrder, error) {
	var out entity.ProductionOrder
	err := r.s.read(ctx, func(st *state) error {
		for _, p := range st.production {
			if p.LotNumber == lotNumber {
				out = p.Clone()
				return nil
			}
		}
		return apperror.NewNotFound("production order", lotNumber)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
