package catalog

import (
	"context"
	"fmt"
	"strings"

	"erpledger/internal/core/apperror"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/tx"
	"erpledger/pkg/logger"
)

// Service provides catalog operations.
type Service struct {
	repo Repository
	txm  tx.Manager
}

// NewService creates a new catalog service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{repo: repo, txm: txm}
}

// CreateProduct validates and stores a product. SKUs are unique and BOM
// components must exist.
func (s *Service) CreateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Batches = nil
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetProductBySKU(ctx, p.SKU); err == nil {
			return apperror.NewAlreadyExists("product", "sku", p.SKU)
		} else if !apperror.IsNotFound(err) {
			return fmt.Errorf("lookup sku: %w", err)
		}
		if err := s.checkComponents(ctx, p.BOM); err != nil {
			return err
		}
		return s.repo.CreateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

// SetBOM replaces a product's bill of materials.
func (s *Service) SetBOM(ctx context.Context, productID id.ID, lines []entity.BOMLine) (*entity.Product, error) {
	if err := entity.ValidateBOM(lines); err != nil {
		return nil, err
	}

	var product *entity.Product
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.checkComponents(ctx, lines); err != nil {
			return err
		}
		p.BOM = lines
		if err := s.repo.UpdateProduct(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bill of materials updated", "product_id", productID, "lines", len(lines))
	return product, nil
}

// CreateComponent validates and stores a component.
func (s *Service) CreateComponent(ctx context.Context, c *entity.Component) (*entity.Component, error) {
	c.Batches = nil
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.CreateComponent(ctx, c)
	}); err != nil {
		return nil, err
	}
	logger.Info(ctx, "component created", "component_id", c.ID, "name", c.Name)
	return c, nil
}

func (s *Service) GetProduct(ctx context.Context, productID id.ID) (*entity.Product, error) {
	return s.repo.GetProduct(ctx, productID)
}

func (s *Service) GetComponent(ctx context.Context, componentID id.ID) (*entity.Component, error) {
	return s.repo.GetComponent(ctx, componentID)
}

func (s *Service) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListComponents(ctx context.Context) ([]entity.Component, error) {
	return s.repo.ListComponents(ctx)
}

func (s *Service) checkComponents(ctx context.Context, lines []entity.BOMLine) error {
	for i, line := range lines {
		if _, err := s.repo.GetComponent(ctx, line.ComponentID); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("bill of materials references an unknown component").
					WithDetail("field", "bom").
					WithDetail("index", i).
					WithDetail("componentId", line.ComponentID)
			}
			return err
		}
	}
	return nil
}
