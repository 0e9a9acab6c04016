package orders

import (
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/allocation"
)

// Strategy decides what happens to the unshipped remainder.
type Strategy string

const (
	// StrategyPartial leaves the order open as "partially fulfilled".
	StrategyPartial Strategy = "partial"
	// StrategyBackorder closes the order and moves the remainder to a new backorder.
	StrategyBackorder Strategy = "backorder"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyPartial || s == StrategyBackorder
}

// LotAllocation ships Quantity from one lot.
type LotAllocation struct {
	LotNumber string         `json:"lotNumber"`
	Quantity  types.Quantity `json:"quantity"`
}

// LinePlan is the caller's chosen allocation for one order line.
// It is usually the FEFO suggestion, possibly edited by hand.
type LinePlan struct {
	ProductID   id.ID           `json:"productId"`
	Allocations []LotAllocation `json:"allocations"`
}

// Shipped sums the plan's allocations.
func (p LinePlan) Shipped() types.Quantity {
	var total types.Quantity
	for _, a := range p.Allocations {
		total += a.Quantity
	}
	return total
}

// CreateInput is a new sales order.
type CreateInput struct {
	CustomerID id.ID
	AgentID    id.ID
	Items      []entity.OrderLine
}

// SuggestedLine is the FEFO proposal for one line's remaining quantity.
type SuggestedLine struct {
	ProductID id.ID           `json:"productId"`
	Remaining types.Quantity  `json:"remaining"`
	Plan      allocation.Plan `json:"plan"`
}

// Suggestion covers every open line of an order.
type Suggestion struct {
	OrderID id.ID           `json:"orderId"`
	Lines   []SuggestedLine `json:"lines"`
}

// LinePlans converts the suggestion into a plan accepted by Fulfill.
func (s *Suggestion) LinePlans() []LinePlan {
	plans := make([]LinePlan, 0, len(s.Lines))
	for _, line := range s.Lines {
		if len(line.Plan.Allocations) == 0 {
			continue
		}
		lp := LinePlan{ProductID: line.ProductID}
		for _, a := range line.Plan.Allocations {
			lp.Allocations = append(lp.Allocations, LotAllocation{LotNumber: a.LotNumber, Quantity: a.Amount})
		}
		plans = append(plans, lp)
	}
	return plans
}

// FulfillmentResult reports the state after a fulfillment.
type FulfillmentResult struct {
	Order     entity.Order         `json:"order"`
	Backorder *entity.Order        `json:"backorder,omitempty"`
	Entries   []entity.LedgerEntry `json:"ledgerEntries"`
}
