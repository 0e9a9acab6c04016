// Package reports answers read-only questions over stock, ledger and production history.
package reports

import (
	"context"
	"time"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/tx"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/ledger"
	"erpledger/internal/domain/production"
)

// Catalog lists items with their current batches.
type Catalog interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	ListComponents(ctx context.Context) ([]entity.Component, error)
}

// Service builds reports.
type Service struct {
	catalog    Catalog
	ledger     *ledger.Recorder
	production production.Repository
	txm        tx.ReadOnlyManager
}

// NewService creates the reports service.
func NewService(cat Catalog, rec *ledger.Recorder, prod production.Repository, txm tx.ReadOnlyManager) *Service {
	return &Service{catalog: cat, ledger: rec, production: prod, txm: txm}
}

// StockLevel is one item's on-hand position.
type StockLevel struct {
	Ref          entity.ItemRef `json:"item"`
	Name         string         `json:"name"`
	SKU          string         `json:"sku,omitempty"`
	Total        types.Quantity `json:"total"`
	Sellable     types.Quantity `json:"sellable"`
	ReorderPoint types.Quantity `json:"reorderPoint"`
	Batches      int            `json:"batches"`
	Low          bool           `json:"low"`
}

// StockLevels lists every item; itemType narrows to products or components.
func (s *Service) StockLevels(ctx context.Context, itemType entity.ItemType) ([]StockLevel, error) {
	var out []StockLevel
	if itemType == "" || itemType == entity.ItemTypeProduct {
		products, err := s.catalog.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			out = append(out, level(p.Ref(), p.Name, p.SKU, p.ReorderPoint, p.Batches))
		}
	}
	if itemType == "" || itemType == entity.ItemTypeComponent {
		components, err := s.catalog.ListComponents(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range components {
			out = append(out, level(c.Ref(), c.Name, "", c.ReorderPoint, c.Batches))
		}
	}
	return out, nil
}

// LowStock lists items whose total quantity is at or below the reorder point.
func (s *Service) LowStock(ctx context.Context) ([]StockLevel, error) {
	levels, err := s.StockLevels(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]StockLevel, 0, len(levels))
	for _, l := range levels {
		if l.Low {
			out = append(out, l)
		}
	}
	return out, nil
}

func level(ref entity.ItemRef, name, sku string, reorder types.Quantity, batches []entity.Batch) StockLevel {
	total := entity.TotalQuantity(batches)
	var sellable types.Quantity
	for _, b := range batches {
		if ref.Type == entity.ItemTypeComponent || b.IsSellable() {
			sellable += b.Quantity
		}
	}
	return StockLevel{
		Ref:          ref,
		Name:         name,
		SKU:          sku,
		Total:        total,
		Sellable:     sellable,
		ReorderPoint: reorder,
		Batches:      len(batches),
		Low:          total <= reorder,
	}
}

// Ledger returns entries matching the filter.
func (s *Service) Ledger(ctx context.Context, filter ledger.Filter) ([]entity.LedgerEntry, error) {
	return s.ledger.Entries(ctx, filter)
}

// ProductLotTrace lists the component lots consumed to produce a lot.
type ProductLotTrace struct {
	LotNumber  string                  `json:"lotNumber"`
	ProductID  id.ID                   `json:"productId"`
	Production entity.ProductionOrder  `json:"productionOrder"`
	Components []entity.ComponentUsage `json:"components"`
}

// TraceProductLot answers "which supplier lots went into this product lot".
func (s *Service) TraceProductLot(ctx context.Context, lotNumber string) (*ProductLotTrace, error) {
	po, err := s.production.FindByLot(ctx, lotNumber)
	if err != nil {
		return nil, err
	}
	return &ProductLotTrace{
		LotNumber:  po.LotNumber,
		ProductID:  po.ProductID,
		Production: *po,
		Components: po.ComponentsUsed,
	}, nil
}

// ComponentLotUse is one production run that drew from a supplier lot.
type ComponentLotUse struct {
	ProductID    id.ID          `json:"productId"`
	ProductLot   string         `json:"productLotNumber"`
	QuantityUsed types.Quantity `json:"quantityUsed"`
	ProducedAt   time.Time      `json:"producedAt"`
}

// TraceComponentLot answers "which product lots consumed this supplier lot".
func (s *Service) TraceComponentLot(ctx context.Context, componentID id.ID, supplierLot string) ([]ComponentLotUse, error) {
	runs, err := s.production.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := []ComponentLotUse{}
	for _, run := range runs {
		var used types.Quantity
		for _, u := range run.ComponentsUsed {
			if u.ComponentID == componentID && u.SupplierLotNumber == supplierLot {
				used += u.QuantityUsed
			}
		}
		if used.IsPositive() {
			out = append(out, ComponentLotUse{
				ProductID:    run.ProductID,
				ProductLot:   run.LotNumber,
				QuantityUsed: used,
				ProducedAt:   run.Date,
			})
		}
	}
	return out, nil
}

// ReconciliationLine compares batch stock with the ledger for one item.
type ReconciliationLine struct {
	Ref         entity.ItemRef `json:"item"`
	Name        string         `json:"name"`
	BatchTotal  types.Quantity `json:"batchTotal"`
	LedgerTotal types.Quantity `json:"ledgerTotal"`
	Balanced    bool           `json:"balanced"`
}

// Reconciliation is the full check.
type Reconciliation struct {
	Balanced bool                 `json:"balanced"`
	Lines    []ReconciliationLine `json:"lines"`
}

// Reconcile checks Σ ledger change == Σ batch quantity for every item.
// Batches and ledger are read under one consistent view.
func (s *Service) Reconcile(ctx context.Context) (*Reconciliation, error) {
	var (
		levels  []StockLevel
		entries []entity.LedgerEntry
	)
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if levels, err = s.StockLevels(ctx, ""); err != nil {
			return err
		}
		entries, err = s.ledger.Entries(ctx, ledger.Filter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	sums := make(map[entity.ItemRef]types.Quantity)
	for _, e := range entries {
		sums[e.Ref()] += e.QuantityChange
	}

	out := &Reconciliation{Balanced: true, Lines: make([]ReconciliationLine, 0, len(levels))}
	for _, l := range levels {
		line := ReconciliationLine{
			Ref:         l.Ref,
			Name:        l.Name,
			BatchTotal:  l.Total,
			LedgerTotal: sums[l.Ref],
		}
		line.Balanced = line.BatchTotal == line.LedgerTotal
		if !line.Balanced {
			out.Balanced = false
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}
