package memory

import (
	"context"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/billing"
	"erpledger/internal/domain/orders"
	"erpledger/internal/domain/returns"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct{ s *Store }

// Orders returns the sales order repository.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

var (
	_ orders.Repository   = (*OrderRepo)(nil)
	_ billing.OrderStore  = (*OrderRepo)(nil)
	_ returns.OrderReader = (*OrderRepo)(nil)
)

func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		order.ID = id.ID(st.next(t, seqOrders))
		put(t, st.orders, order.ID, order.Clone())
		t.touch(snapshot.BucketOrders)
		return nil
	})
}

func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if _, ok := st.orders[order.ID]; !ok {
			return apperror.NewNotFound("order", order.ID)
		}
		put(t, st.orders, order.ID, order.Clone())
		t.touch(snapshot.BucketOrders)
		return nil
	})
}

func (r *OrderRepo) Get(ctx context.Context, orderID id.ID) (*entity.Order, error) {
	var out entity.Order
	err := r.s.read(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return apperror.NewNotFound("order", orderID)
		}
		out = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OrderRepo) List(ctx context.Context, filter orders.Filter) ([]entity.Order, error) {
	var out []entity.Order
	err := r.s.read(ctx, func(st *state) error {
		for _, k := range sortedKeys(st.orders) {
			if o := st.orders[k]; filter.Matches(o) {
				out = append(out, o.Clone())
			}
		}
		return nil
	})
	return out, err
}
