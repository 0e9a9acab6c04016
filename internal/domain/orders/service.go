package orders

import (
	"context"
	"fmt"
	"strconv"

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
)

// Service is the order fulfillment orchestrator.
type Service struct {
	repo    Repository
	catalog catalog.Reader
	stock   *inventory.Service
	ledger  *ledger.Recorder
	numbers numerator.Generator
	txm     tx.Manager
	clock   clock.Clock
}

// NewService creates the orchestrator.
func NewService(
	repo Repository,
	cat catalog.Reader,
	stock *inventory.Service,
	rec *ledger.Recorder,
	numbers numerator.Generator,
	txm tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		stock:   stock,
		ledger:  rec,
		numbers: numbers,
		txm:     txm,
		clock:   clk,
	}
}

// CreateOrder stores a new pending order.
func (s *Service) CreateOrder(ctx context.Context, in CreateInput) (*entity.Order, error) {
	order := &entity.Order{
		CustomerID:     in.CustomerID,
		AgentID:        in.AgentID,
		Items:          in.Items,
		FulfilledItems: []entity.OrderLine{},
		Status:         entity.OrderPending,
	}
	if err := order.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, line := range order.Items {
			if _, err := s.catalog.GetProduct(ctx, line.ProductID); err != nil {
				return err
			}
		}
		order.Date = s.clock.Now()
		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixOrder), order.Date)
		if err != nil {
			return fmt.Errorf("order number: %w", err)
		}
		order.Number = number
		return s.repo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created", "order_id", order.ID, "number", order.Number, "lines", len(order.Items))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*entity.Order, error) {
	return s.repo.Get(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context, filter Filter) ([]entity.Order, error) {
	return s.repo.List(ctx, filter)
}

// CancelOrder cancels an order that has shipped nothing yet.
func (s *Service) CancelOrder(ctx context.Context, orderID id.ID) (*entity.Order, error) {
	var order *entity.Order
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderPending && o.Status != entity.OrderBackorder {
			return apperror.NewInvalidTransition("order", string(o.Status), string(entity.OrderCancelled))
		}
		if len(o.FulfilledItems) > 0 {
			return apperror.NewInvalidTransition("order", string(o.Status), string(entity.OrderCancelled)).
				WithDetail("reason", "order has shipped items")
		}
		o.Status = entity.OrderCancelled
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "order cancelled", "order_id", orderID)
	return order, nil
}

// SuggestPlan runs the FEFO allocator over sellable batches for every open line.
// Nothing is reserved; stock may change before Fulfill is called.
func (s *Service) SuggestPlan(ctx context.Context, orderID id.ID) (*Suggestion, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := &Suggestion{OrderID: order.ID, Lines: []SuggestedLine{}}
	if !order.Status.CanFulfill() {
		return out, nil
	}
	for _, line := range order.Remaining() {
		batches, err := s.stock.Batches(ctx, entity.ProductRef(line.ProductID))
		if err != nil {
			return nil, err
		}
		out.Lines = append(out.Lines, SuggestedLine{
			ProductID: line.ProductID,
			Remaining: line.Quantity,
			Plan:      allocation.Allocate(allocation.SellableOnly(batches), line.Quantity, allocation.FEFO),
		})
	}
	return out, nil
}

type lotKey struct {
	productID id.ID
	lot       string
}

// Fulfill ships the plan against the order.
//
// The whole plan is validated before the first deduction: every lot must
// exist and be Sellable, per-lot totals may not exceed the batch, and no line
// may ship more than was ordered. With StrategyBackorder an incompletely
// shipped order is split and closed.
func (s *Service) Fulfill(ctx context.Context, orderID id.ID, plan []LinePlan, strategy Strategy) (*FulfillmentResult, error) {
	if strategy == "" {
		strategy = StrategyPartial
	}
	if !strategy.Valid() {
		return nil, apperror.NewValidation("unknown fulfillment strategy").
			WithDetail("field", "strategy").
			WithDetail("value", string(strategy))
	}

	ctx = appctx.WithCorrelation(ctx, string(entity.CorrelationOrder), strconv.FormatInt(orderID, 10))

	var result FulfillmentResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.validatePlan(ctx, order, plan); err != nil {
			return err
		}
		if strategy == StrategyBackorder && order.BackorderID != nil {
			return apperror.NewAlreadyExists("backorder", "originalOrderId", order.ID)
		}

		ref := strconv.FormatInt(order.ID, 10)
		for _, line := range plan {
			productRef := entity.ProductRef(line.ProductID)
			for _, a := range line.Allocations {
				if _, err := s.stock.ApplyDelta(ctx, productRef, a.LotNumber, a.Quantity.Neg()); err != nil {
					return err
				}
				entry, err := s.ledger.Record(ctx, ledger.Entry{
					Ref:             productRef,
					LotNumber:       a.LotNumber,
					QuantityChange:  a.Quantity.Neg(),
					Reason:          fmt.Sprintf("Order %s fulfilled from lot %s", order.Number, a.LotNumber),
					CorrelationType: entity.CorrelationOrder,
					CorrelationID:   ref,
				})
				if err != nil {
					return err
				}
				result.Entries = append(result.Entries, entry)
			}
			order.AddFulfilled(line.ProductID, line.Shipped())
		}

		if order.IsFullyFulfilled() {
			order.Status = entity.OrderCompleted
		} else {
			order.Status = entity.OrderPartiallyFulfilled
		}

		if strategy == StrategyBackorder && order.Status == entity.OrderPartiallyFulfilled {
			backorder, err := s.split(ctx, order)
			if err != nil {
				return err
			}
			result.Backorder = backorder
		} else if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		result.Order = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order fulfilled",
		"order_id", orderID,
		"status", string(result.Order.Status),
		"ledger_entries", len(result.Entries),
		"backorder", result.Backorder != nil,
	)
	return &result, nil
}

// CreateBackorder splits a partially fulfilled order.
func (s *Service) CreateBackorder(ctx context.Context, orderID id.ID) (*FulfillmentResult, error) {
	var result FulfillmentResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if order.BackorderID != nil {
			return apperror.NewAlreadyExists("backorder", "originalOrderId", order.ID)
		}
		if order.Status != entity.OrderPartiallyFulfilled {
			return apperror.NewInvalidTransition("order", string(order.Status), string(entity.OrderBackorder)).
				WithDetail("reason", "only partially fulfilled orders can be split")
		}
		backorder, err := s.split(ctx, order)
		if err != nil {
			return err
		}
		result = FulfillmentResult{Order: *order, Backorder: backorder}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "backorder created", "order_id", orderID, "backorder_id", result.Backorder.ID)
	return &result, nil
}

// split moves the unshipped remainder to a new backorder and closes the original.
func (s *Service) split(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	remaining := order.Remaining()

	shipped := make([]entity.OrderLine, 0, len(order.Items))
	for _, line := range order.Items {
		if q := order.FulfilledQuantity(line.ProductID); q.IsPositive() {
			shipped = append(shipped, entity.OrderLine{ProductID: line.ProductID, Quantity: q})
		}
	}

	now := s.clock.Now()
	number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixOrder), now)
	if err != nil {
		return nil, fmt.Errorf("backorder number: %w", err)
	}
	originalID := order.ID
	backorder := &entity.Order{
		Number:          number,
		CustomerID:      order.CustomerID,
		AgentID:         order.AgentID,
		Date:            now,
		Status:          entity.OrderBackorder,
		Items:           remaining,
		FulfilledItems:  []entity.OrderLine{},
		OriginalOrderID: &originalID,
	}
	if err := s.repo.Create(ctx, backorder); err != nil {
		return nil, fmt.Errorf("create backorder: %w", err)
	}

	backorderID := backorder.ID
	order.Items = shipped
	order.Status = entity.OrderCompleted
	order.BackorderID = &backorderID
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return backorder, nil
}

func (s *Service) validatePlan(ctx context.Context, order *entity.Order, plan []LinePlan) error {
	if !order.Status.CanFulfill() {
		return apperror.NewInvalidTransition("order", string(order.Status), string(entity.OrderPartiallyFulfilled)).
			WithDetail("reason", "order is closed for fulfillment")
	}

	perLot := make(map[lotKey]types.Quantity)
	perProduct := make(map[id.ID]types.Quantity)
	count := 0
	for i, line := range plan {
		if !order.HasProduct(line.ProductID) {
			return apperror.NewValidation("product is not on this order").
				WithDetail("field", "lines").
				WithDetail("index", i).
				WithDetail("productId", line.ProductID)
		}
		for _, a := range line.Allocations {
			if a.LotNumber == "" {
				return apperror.NewValidation("lot number is required").
					WithDetail("field", "lotNumber").
					WithDetail("productId", line.ProductID)
			}
			if !a.Quantity.IsPositive() {
				return apperror.NewValidation("allocated quantity must be positive").
					WithDetail("field", "quantity").
					WithDetail("lotNumber", a.LotNumber)
			}
			perLot[lotKey{line.ProductID, a.LotNumber}] += a.Quantity
			perProduct[line.ProductID] += a.Quantity
			count++
		}
	}
	if count == 0 {
		return apperror.NewValidation("allocation plan is empty").
			WithDetail("field", "lines")
	}

	for productID, shipping := range perProduct {
		ordered := order.OrderedQuantity(productID)
		already := order.FulfilledQuantity(productID)
		if already+shipping > ordered {
			return apperror.NewValidation("shipment exceeds ordered quantity").
				WithDetail("productId", productID).
				WithDetail("ordered", ordered.String()).
				WithDetail("alreadyFulfilled", already.String()).
				WithDetail("requested", shipping.String())
		}
	}

	for key, requested := range perLot {
		batch, err := s.stock.GetBatch(ctx, entity.ProductRef(key.productID), key.lot)
		if err != nil {
			return err
		}
		if !batch.IsSellable() {
			return apperror.NewValidation("batch is not sellable").
				WithDetail("lotNumber", key.lot).
				WithDetail("status", string(batch.EffectiveStatus()))
		}
		if requested > batch.Quantity {
			return apperror.NewValidation("allocation exceeds the batch's available quantity").
				WithDetail("lotNumber", key.lot).
				WithDetail("requested", requested.String()).
				WithDetail("available", batch.Quantity.String())
		}
	}
	return nil
}
