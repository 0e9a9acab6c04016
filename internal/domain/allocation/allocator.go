// Package allocation computes which batches satisfy a requested quantity.
// It never touches the store: callers review the plan, then commit it.
package allocation

import (
	"sort"

	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
)

// Policy orders batches before the greedy draw.
type Policy int

const (
	// FEFO drains the soonest-expiring batch first. Ties keep input order,
	// batches without an expiry date go last.
	FEFO Policy = iota
	// InsertionOrder drains batches in the order they were received.
	InsertionOrder
)

func (p Policy) String() string {
	if p == FEFO {
		return "fefo"
	}
	return "insertion"
}

// Allocation draws Amount from one batch.
type Allocation struct {
	BatchID   id.ID          `json:"batchId"`
	LotNumber string         `json:"lotNumber"`
	Amount    types.Quantity `json:"amount"`
}

// Plan is the allocator's answer for one requested quantity.
type Plan struct {
	Requested   types.Quantity `json:"requested"`
	Allocations []Allocation   `json:"allocations"`
	Shortfall   types.Quantity `json:"shortfall"`
}

// Allocated is the total drawn by the plan.
func (p Plan) Allocated() types.Quantity {
	var total types.Quantity
	for _, a := range p.Allocations {
		total += a.Amount
	}
	return total
}

// Covers reports whether the plan satisfies the whole request.
func (p Plan) Covers() bool {
	return p.Shortfall.IsZero()
}

// Allocate greedily assigns min(remaining, batch.quantity) in policy order.
// It never fails; a shortfall is left to the caller to judge.
func Allocate(batches []entity.Batch, requested types.Quantity, policy Policy) Plan {
	plan := Plan{Requested: requested, Allocations: []Allocation{}}
	if !requested.IsPositive() {
		return plan
	}

	ordered := make([]entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b.Quantity.IsPositive() {
			ordered = append(ordered, b)
		}
	}
	if policy == FEFO {
		sort.SliceStable(ordered, func(i, j int) bool {
			return expiresBefore(ordered[i], ordered[j])
		})
	}

	remaining := requested
	for _, b := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := types.MinQuantity(remaining, b.Quantity)
		plan.Allocations = append(plan.Allocations, Allocation{
			BatchID:   b.ID,
			LotNumber: b.LotNumber,
			Amount:    take,
		})
		remaining -= take
	}
	plan.Shortfall = types.MaxQuantity(0, remaining)
	return plan
}

func expiresBefore(a, b entity.Batch) bool {
	switch {
	case a.ExpiryDate == nil:
		return false
	case b.ExpiryDate == nil:
		return true
	default:
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}
}

// SellableOnly filters out batches held by quality control.
func SellableOnly(batches []entity.Batch) []entity.Batch {
	out := make([]entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b.IsSellable() {
			out = append(out, b)
		}
	}
	return out
}
