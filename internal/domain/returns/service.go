package returns

import (
	"context"
	"fmt"
	"strings"

	"erpledger/internal/core/apperror"
	appctx "erpledger/internal/core/context"
	"erpledger/internal/core/clock"
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/numerator"
	"erpledger/internal/core/tx"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/billing"
	"erpledger/internal/domain/catalog"
	"erpledger/internal/domain/inventory"
	"erpledger/internal/domain/ledger"
	"erpledger/pkg/logger"
)

// Service turns returns into stock movements and credit.
type Service struct {
	repo    Repository
	orders  OrderReader
	catalog catalog.Reader
	stock   *inventory.Service
	ledger  *ledger.Recorder
	billing *billing.Service
	numbers numerator.Generator
	txm     tx.Manager
	clock   clock.Clock
}

// Deps groups the collaborators of the returns service.
type Deps struct {
	Repo    Repository
	Orders  OrderReader
	Catalog catalog.Reader
	Stock   *inventory.Service
	Ledger  *ledger.Recorder
	Billing *billing.Service
	Numbers numerator.Generator
	TxM     tx.Manager
	Clock   clock.Clock
}

// NewService creates the returns service.
func NewService(d Deps) *Service {
	return &Service{
		repo:    d.Repo,
		orders:  d.Orders,
		catalog: d.Catalog,
		stock:   d.Stock,
		ledger:  d.Ledger,
		billing: d.Billing,
		numbers: d.Numbers,
		txm:     d.TxM,
		clock:   d.Clock,
	}
}

// CreateReturnInput is a customer's return request.
type CreateReturnInput struct {
	CustomerID id.ID
	OrderID    *id.ID
	Lines      []entity.ReturnLine
	Reason     string
}

// CreateReturn registers an RMA in status requested.
func (s *Service) CreateReturn(ctx context.Context, in CreateReturnInput) (*entity.Return, error) {
	rma := &entity.Return{
		CustomerID: in.CustomerID,
		OrderID:    in.OrderID,
		Lines:      in.Lines,
		Reason:     strings.TrimSpace(in.Reason),
		Status:     entity.ReturnRequested,
	}
	if err := rma.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if rma.OrderID != nil {
			order, err := s.orders.Get(ctx, *rma.OrderID)
			if err != nil {
				return err
			}
			if order.CustomerID != rma.CustomerID {
				return apperror.NewValidation("order belongs to a different customer").
					WithDetail("field", "orderId")
			}
		}
		for _, line := range rma.Lines {
			if _, err := s.catalog.GetProduct(ctx, line.ProductID); err != nil {
				return err
			}
		}
		rma.CreatedAt = s.clock.Now()
		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixReturn), rma.CreatedAt)
		if err != nil {
			return fmt.Errorf("rma number: %w", err)
		}
		rma.Number = number
		return s.repo.CreateReturn(ctx, rma)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return requested", "return_id", rma.ID, "rma", rma.Number)
	return rma, nil
}

// ProcessedReturn is the outcome of processing an RMA.
type ProcessedReturn struct {
	Return     entity.Return      `json:"return"`
	Batches    []entity.Batch     `json:"batches"`
	CreditNote *entity.CreditNote `json:"creditNote"`
}

// ProcessReturn books returned goods as inspection-pending batches and issues
// one credit note for their full value at base price.
func (s *Service) ProcessReturn(ctx context.Context, returnID id.ID) (*ProcessedReturn, error) {
	var out ProcessedReturn
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		rma, err := s.repo.GetReturn(ctx, returnID)
		if err != nil {
			return err
		}
		ctx = appctx.WithCorrelation(ctx, string(entity.CorrelationReturn), rma.Number)
		if rma.Status != entity.ReturnRequested {
			return apperror.NewInvalidTransition("return", string(rma.Status), string(entity.ReturnProcessed))
		}

		now := s.clock.Now()
		value := types.Zero()
		for _, line := range rma.Lines {
			product, err := s.catalog.GetProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			batch, err := s.stock.AddBatch(ctx, product.Ref(), entity.Batch{
				LotNumber:    ReturnLotNumber(rma.Number, product.ID),
				Quantity:     line.Quantity,
				ExpiryDate:   product.ExpiryFrom(clock.StartOfDay(now)),
				ReceivedDate: &now,
				Status:       entity.QCReturnedInspection,
			})
			if err != nil {
				return err
			}
			if _, err := s.ledger.Record(ctx, ledger.Entry{
				Ref:             product.Ref(),
				LotNumber:       batch.LotNumber,
				QuantityChange:  line.Quantity,
				Reason:          fmt.Sprintf("Customer return %s received, lot %s", rma.Number, batch.LotNumber),
				CorrelationType: entity.CorrelationReturn,
				CorrelationID:   rma.Number,
			}); err != nil {
				return err
			}
			out.Batches = append(out.Batches, batch)
			value = value.Add(product.BasePrice().Mul(line.Quantity.Decimal()))
		}

		note, err := s.billing.IssueCreditNote(ctx, billing.CreditNoteInput{
			CustomerID: rma.CustomerID,
			ReturnID:   rma.ID,
			Reason:     fmt.Sprintf("%s: %s", rma.Number, rma.Reason),
			Amount:     value,
		})
		if err != nil {
			return err
		}

		noteID := note.ID
		rma.Status = entity.ReturnProcessed
		rma.CreditNoteID = &noteID
		rma.ProcessedAt = &now
		if err := s.repo.UpdateReturn(ctx, rma); err != nil {
			return fmt.Errorf("update return: %w", err)
		}

		out.Return = *rma
		out.CreditNote = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return processed",
		"return_id", returnID,
		"batches", len(out.Batches),
		"credit", out.CreditNote.Amount.String(),
	)
	return &out, nil
}

// ReturnLotNumber derives a returned batch's lot from the RMA number and product.
func ReturnLotNumber(rmaNumber string, productID id.ID) string {
	return fmt.Sprintf("%s-%d", rmaNumber, productID)
}

func (s *Service) GetReturn(ctx context.Context, returnID id.ID) (*entity.Return, error) {
	return s.repo.GetReturn(ctx, returnID)
}

func (s *Service) ListReturns(ctx context.Context) ([]entity.Return, error) {
	return s.repo.ListReturns(ctx)
}

// CreateSupplierReturnInput is a request to send component stock back.
type CreateSupplierReturnInput struct {
	ComponentID       id.ID
	SupplierLotNumber string
	Quantity          types.Quantity
	Reason            string
}

// CreateSupplierReturn registers an SRMA in status requested.
func (s *Service) CreateSupplierReturn(ctx context.Context, in CreateSupplierReturnInput) (*entity.SupplierReturn, error) {
	srma := &entity.SupplierReturn{
		ComponentID:       in.ComponentID,
		SupplierLotNumber: strings.TrimSpace(in.SupplierLotNumber),
		Quantity:          in.Quantity,
		Reason:            strings.TrimSpace(in.Reason),
		Status:            entity.ReturnRequested,
	}
	if err := srma.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.stock.GetBatch(ctx, entity.ComponentRef(srma.ComponentID), srma.SupplierLotNumber); err != nil {
			return err
		}
		srma.CreatedAt = s.clock.Now()
		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numerator.PrefixSupplierReturn), srma.CreatedAt)
		if err != nil {
			return fmt.Errorf("srma number: %w", err)
		}
		srma.Number = number
		return s.repo.CreateSupplierReturn(ctx, srma)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "supplier return requested", "supplier_return_id", srma.ID, "srma", srma.Number)
	return srma, nil
}

// ProcessSupplierReturn deducts the returned quantity from the supplier lot.
func (s *Service) ProcessSupplierReturn(ctx context.Context, returnID id.ID) (*entity.SupplierReturn, error) {
	var out *entity.SupplierReturn
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		srma, err := s.repo.GetSupplierReturn(ctx, returnID)
		if err != nil {
			return err
		}
		ctx = appctx.WithCorrelation(ctx, string(entity.CorrelationSupplierRet), srma.Number)
		if srma.Status != entity.ReturnRequested {
			return apperror.NewInvalidTransition("supplier return", string(srma.Status), string(entity.ReturnProcessed))
		}

		ref := entity.ComponentRef(srma.ComponentID)
		if _, err := s.stock.ApplyDelta(ctx, ref, srma.SupplierLotNumber, srma.Quantity.Neg()); err != nil {
			return err
		}
		if _, err := s.ledger.Record(ctx, ledger.Entry{
			Ref:             ref,
			LotNumber:       srma.SupplierLotNumber,
			QuantityChange:  srma.Quantity.Neg(),
			Reason:          fmt.Sprintf("Returned to supplier %s, lot %s", srma.Number, srma.SupplierLotNumber),
			CorrelationType: entity.CorrelationSupplierRet,
			CorrelationID:   srma.Number,
		}); err != nil {
			return err
		}

		now := s.clock.Now()
		srma.Status = entity.ReturnProcessed
		srma.ProcessedAt = &now
		if err := s.repo.UpdateSupplierReturn(ctx, srma); err != nil {
			return fmt.Errorf("update supplier return: %w", err)
		}
		out = srma
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "supplier return processed", "supplier_return_id", returnID, "quantity", out.Quantity.String())
	return out, nil
}

func (s *Service) GetSupplierReturn(ctx context.Context, returnID id.ID) (*entity.SupplierReturn, error) {
	return s.repo.GetSupplierReturn(ctx, returnID)
}

func (s *Service) ListSupplierReturns(ctx context.Context) ([]entity.SupplierReturn, error) {
	return s.repo.ListSupplierReturns(ctx)
}
