package dto

import (
	"erpledger/internal/core/entity"
	"erpledger/internal/core/id"
	"erpledger/internal/core/types"
	"erpledger/internal/domain/orders"
)

// OrderLineRequest is one ordered product.
type OrderLineRequest struct {
	ProductID id.ID          `json:"productId" binding:"required,gt=0"`
	Quantity  types.Quantity `json:"quantity" binding:"gt=0"`
}

// CreateOrderRequest creates a sales order.
type CreateOrderRequest struct {
	CustomerID id.ID              `json:"customerId" binding:"required,gt=0"`
	AgentID    id.ID              `json:"agentId" binding:"gte=0"`
	Items      []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// ToInput converts the request.
func (r *CreateOrderRequest) ToInput() orders.CreateInput {
	in := orders.CreateInput{CustomerID: r.CustomerID, AgentID: r.AgentID}
	for _, item := range r.Items {
		in.Items = append(in.Items, entity.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return in
}

// LotAllocationRequest ships a quantity from one lot.
type LotAllocationRequest struct {
	LotNumber string         `json:"lotNumber" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"gt=0"`
}

// LinePlanRequest allocates lots to one order line.
type LinePlanRequest struct {
	ProductID   id.ID                  `json:"productId" binding:"required,gt=0"`
	Allocations []LotAllocationRequest `json:"allocations" binding:"required,min=1,dive"`
}

// FulfillRequest ships an order. Without a plan the FEFO suggestion is used.
type FulfillRequest struct {
	Strategy orders.Strategy   `json:"strategy" binding:"required,strategy"`
	Plan     []LinePlanRequest `json:"plan" binding:"omitempty,dive"`
}

// LinePlans converts the plan.
func (r *FulfillRequest) LinePlans() []orders.LinePlan {
	plans := make([]orders.LinePlan, 0, len(r.Plan))
	for _, line := range r.Plan {
		lp := orders.LinePlan{ProductID: line.ProductID}
		for _, a := range line.Allocations {
			lp.Allocations = append(lp.Allocations, orders.LotAllocation{LotNumber: a.LotNumber, Quantity: a.Quantity})
		}
		plans = append(plans, lp)
	}
	return plans
}

// OrderListQuery filters the order list.
type OrderListQuery struct {
	Status     entity.OrderStatus `form:"status"`
	CustomerID id.ID              `form:"customerId" binding:"gte=0"`
}
