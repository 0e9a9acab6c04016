package memory

import (
	"context"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/domain/catalog"
	"erpledger/internal/infrastructure/storage/snapshot"
)

// CatalogRepo implements catalog.Repository.
type CatalogRepo struct{ s *Store }

// Catalog returns the product and component repository.
func (s *Store) Catalog() *CatalogRepo { return &CatalogRepo{s: s} }

var _ catalog.Repository = (*CatalogRepo)(nil)

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *entity.Product) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		if _, taken := st.skuIndex[p.SKU]; taken {
			return apperror.NewAlreadyExists("product", "sku", p.SKU)
		}
		p.ID = id.ID(st.next(t, seqProducts))
		put(t, st.products, p.ID, cloneProduct(*p))
		put(t, st.skuIndex, p.SKU, p.ID)
		t.touch(snapshot.BucketProducts)
		return nil
	})
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p *entity.Product) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		prev, ok := st.products[p.ID]
		if !ok {
			return apperror.NewNotFound("product", p.ID)
		}
		if prev.SKU != p.SKU {
			if _, taken := st.skuIndex[p.SKU]; taken {
				return apperror.NewAlreadyExists("product", "sku", p.SKU)
			}
			remove(t, st.skuIndex, prev.SKU)
			put(t, st.skuIndex, p.SKU, p.ID)
		}
		put(t, st.products, p.ID, cloneProduct(*p))
		t.touch(snapshot.BucketProducts)
		return nil
	})
}

func (r *CatalogRepo) GetProduct(ctx context.Context, productID id.ID) (*entity.Product, error) {
	var out entity.Product
	err := r.s.read(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID)
		}
		out = st.productView(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CatalogRepo) GetProductBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var out entity.Product
	err := r.s.read(ctx, func(st *state) error {
		pid, ok := st.skuIndex[sku]
		if !ok {
			return apperror.NewNotFound("product", sku)
		}
		out = st.productView(st.products[pid])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	err := r.s.read(ctx, func(st *state) error {
		out = make([]entity.Product, 0, len(st.products))
		for _, k := range sortedKeys(st.products) {
			out = append(out, st.productView(st.products[k]))
		}
		return nil
	})
	return out, err
}

func (r *CatalogRepo) CreateComponent(ctx context.Context, c *entity.Component) error {
	return r.s.write(ctx, func(st *state, t *txState) error {
		c.ID = id.ID(st.next(t, seqComponents))
		stored := *c
		stored.Batches = nil
		put(t, st.components, c.ID, stored)
		t.touch(snapshot.BucketComponents)
		return nil
	})
}

func (r *CatalogRepo) GetComponent(ctx context.Context, componentID id.ID) (*entity.Component, error) {
	var out entity.Component
	err := r.s.read(ctx, func(st *state) error {
		c, ok := st.components[componentID]
		if !ok {
			return apperror.NewNotFound("component", componentID)
		}
		out = st.componentView(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CatalogRepo) ListComponents(ctx context.Context) ([]entity.Component, error) {
	var out []entity.Component
	err := r.s.read(ctx, func(st *state) error {
		out = make([]entity.Component, 0, len(st.components))
		for _, k := range sortedKeys(st.components) {
			out = append(out, st.componentView(st.components[k]))
		}
		return nil
	})
	return out, err
}
