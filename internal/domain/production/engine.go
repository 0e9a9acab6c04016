package production

import (
	"context"
	"fmt"
	"time"

	"erpledger/internal/core/apperror"
	appctx "erpledger/internal/core/context"
	"erpledger/internal/core/clock"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/numerator"
	"erpledger/internal/core/tx"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/allocation"
	"erpledger/internal/domain/catalog"
	"erpledger/internal/domain/inventory"
	"erpledger/internal/domain/ledger"
	"erpledger/pkg/logger"
	numfmt "erpledger/pkg/numerator"
)

// Engine runs production orders against a product's bill of materials.
type Engine struct {
	catalog catalog.Reader
	stock   *inventory.Service
	ledger  *ledger.Recorder
	repo    Repository
	txm     tx.Manager
	clock   clock.Clock
}

// NewEngine creates a production engine.
func NewEngine(
	cat catalog.Reader,
	stock *inventory.Service,
	rec *ledger.Recorder,
	repo Repository,
	txm tx.Manager,
	clk clock.Clock,
) *Engine {
	return &Engine{
		catalog: cat,
		stock:   stock,
		ledger:  rec,
		repo:    repo,
		txm:     txm,
		clock:   clk,
	}
}

// Requirement is one BOM line scaled to a run.
type Requirement struct {
	ComponentID   id.ID          `json:"componentId"`
	ComponentName string         `json:"componentName"`
	Unit          string         `json:"unit"`
	Required      types.Quantity `json:"required"`
	Available     types.Quantity `json:"available"`
	Shortfall     types.Quantity `json:"shortfall"`
}

// Preview is the sufficiency check of a run without side effects.
type Preview struct {
	ProductID    id.ID          `json:"productId"`
	Quantity     types.Quantity `json:"quantity"`
	Requirements []Requirement  `json:"requirements"`
	CanProduce   bool           `json:"canProduce"`
}

// Preview reports per-component requirements for producing quantity units.
func (e *Engine) Preview(ctx context.Context, productID id.ID, quantity types.Quantity) (*Preview, error) {
	if !quantity.IsPositive() {
		return nil, apperror.NewValidation("production quantity must be positive").
			WithDetail("field", "quantity")
	}
	product, err := e.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	reqs, err := e.requirements(ctx, product, quantity)
	if err != nil {
		return nil, err
	}

	out := &Preview{ProductID: productID, Quantity: quantity, Requirements: reqs, CanProduce: true}
	for _, r := range reqs {
		if r.Shortfall.IsPositive() {
			out.CanProduce = false
		}
	}
	return out, nil
}

// Produce consumes components and creates one finished-goods lot.
//
// Sufficiency of every BOM line is checked before the first deduction, and the
// whole run executes in one transaction: on any error nothing is changed.
func (e *Engine) Produce(ctx context.Context, productID id.ID, quantity types.Quantity) (*entity.ProductionOrder, error) {
	if !quantity.IsPositive() {
		return nil, apperror.NewValidation("production quantity must be positive").
			WithDetail("field", "quantity")
	}

	var order *entity.ProductionOrder
	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		product, err := e.catalog.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		reqs, err := e.requirements(ctx, product, quantity)
		if err != nil {
			return err
		}
		for _, r := range reqs {
			if r.Shortfall.IsPositive() {
				return apperror.NewInsufficientComponentStock(r.ComponentName, r.Required.String(), r.Available.String())
			}
		}

		now := e.clock.Now()
		lot, err := e.nextLot(ctx, product, now)
		if err != nil {
			return err
		}
		ctx = appctx.WithCorrelation(ctx, string(entity.CorrelationProduction), lot)

		usage := make([]entity.ComponentUsage, 0, len(reqs))
		for _, r := range reqs {
			used, err := e.consume(ctx, r, lot)
			if err != nil {
				return err
			}
			usage = append(usage, used...)
		}

		batch, err := e.stock.AddBatch(ctx, product.Ref(), entity.Batch{
			LotNumber:    lot,
			Quantity:     quantity,
			ExpiryDate:   product.ExpiryFrom(clock.StartOfDay(now)),
			ReceivedDate: &now,
			Status:       entity.QCSellable,
		})
		if err != nil {
			return err
		}
		if _, err := e.ledger.Record(ctx, ledger.Entry{
			Ref:             product.Ref(),
			LotNumber:       batch.LotNumber,
			QuantityChange:  quantity,
			Reason:          fmt.Sprintf("Produced lot %s", lot),
			CorrelationType: entity.CorrelationProduction,
			CorrelationID:   lot,
		}); err != nil {
			return err
		}

		order = &entity.ProductionOrder{
			ProductID:        product.ID,
			LotNumber:        lot,
			QuantityProduced: quantity,
			Date:             now,
			ComponentsUsed:   usage,
		}
		if err := e.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("store production order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production completed",
		"production_id", order.ID,
		"product_id", productID,
		"lot", order.LotNumber,
		"quantity", quantity.String(),
		"component_lots", len(order.ComponentsUsed),
	)
	return order, nil
}

// History lists production runs, optionally for one product.
func (e *Engine) History(ctx context.Context, productID id.ID) ([]entity.ProductionOrder, error) {
	return e.repo.List(ctx, productID)
}

func (e *Engine) requirements(ctx context.Context, product *entity.Product, quantity types.Quantity) ([]Requirement, error) {
	if len(product.BOM) == 0 {
		return nil, apperror.NewNoBOM(product.SKU)
	}
	reqs := make([]Requirement, 0, len(product.BOM))
	for _, line := range product.BOM {
		component, err := e.catalog.GetComponent(ctx, line.ComponentID)
		if err != nil {
			return nil, err
		}
		required, err := line.QuantityPerUnit.Mul(quantity)
		if err != nil || !required.IsPositive() {
			return nil, apperror.NewValidation("production quantity is out of range for the bill of materials").
				WithDetail("field", "quantity").
				WithDetail("componentId", line.ComponentID)
		}
		available := entity.TotalQuantity(component.Batches)
		reqs = append(reqs, Requirement{
			ComponentID:   component.ID,
			ComponentName: component.Name,
			Unit:          component.Unit,
			Required:      required,
			Available:     available,
			Shortfall:     types.MaxQuantity(0, required-available),
		})
	}
	return reqs, nil
}

// consume deducts one requirement in insertion order and writes the aggregate ledger entry.
func (e *Engine) consume(ctx context.Context, r Requirement, lot string) ([]entity.ComponentUsage, error) {
	ref := entity.ComponentRef(r.ComponentID)
	batches, err := e.stock.Batches(ctx, ref)
	if err != nil {
		return nil, err
	}
	plan := allocation.Allocate(batches, r.Required, allocation.InsertionOrder)
	if !plan.Covers() {
		return nil, apperror.NewInsufficientComponentStock(r.ComponentName, r.Required.String(), plan.Allocated().String())
	}

	usage := make([]entity.ComponentUsage, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		if _, err := e.stock.ApplyDelta(ctx, ref, a.LotNumber, a.Amount.Neg()); err != nil {
			return nil, err
		}
		usage = append(usage, entity.ComponentUsage{
			ComponentID:       r.ComponentID,
			QuantityUsed:      a.Amount,
			SupplierLotNumber: a.LotNumber,
		})
	}

	if _, err := e.ledger.Record(ctx, ledger.Entry{
		Ref:             ref,
		QuantityChange:  r.Required.Neg(),
		Reason:          fmt.Sprintf("Consumed for production lot %s", lot),
		CorrelationType: entity.CorrelationProduction,
		CorrelationID:   lot,
	}); err != nil {
		return nil, err
	}
	return usage, nil
}

// nextLot numbers lots per product per day: {sku}-{YYYYMMDD}-{NNN}.
func (e *Engine) nextLot(ctx context.Context, product *entity.Product, now time.Time) (string, error) {
	count, err := e.repo.CountForProductOn(ctx, product.ID, now)
	if err != nil {
		return "", fmt.Errorf("count production runs: %w", err)
	}
	return numfmt.FormatNumber(numerator.LotConfig(product.SKU), now, int64(count+1)), nil
}
