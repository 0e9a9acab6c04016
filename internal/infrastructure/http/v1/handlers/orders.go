package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/domain/billing"
	"erpledger/internal/domain/orders"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// OrdersHandler handles sales orders and their invoices.
type OrdersHandler struct {
	*BaseHandler
	service *orders.Service
	billing *billing.Service
}

// NewOrdersHandler creates a new orders handler.
func NewOrdersHandler(base *BaseHandler, service *orders.Service, billing *billing.Service) *OrdersHandler {
	return &OrdersHandler{BaseHandler: base, service: service, billing: billing}
}

// Create handles POST /orders
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.CreateOrder(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, order)
}

// List handles GET /orders?status=&customerId=
func (h *OrdersHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	list, err := h.service.ListOrders(c.Request.Context(), orders.Filter{Status: q.Status, CustomerID: q.CustomerID})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list))
}

// Get handles GET /orders/:id
func (h *OrdersHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Plan handles GET /orders/:id/plan
func (h *OrdersHandler) Plan(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	suggestion, err := h.service.SuggestPlan(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, suggestion)
}

// Fulfill handles POST /orders/:id/fulfill
func (h *OrdersHandler) Fulfill(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.FulfillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	plan := req.LinePlans()
	if len(plan) == 0 {
		suggestion, err := h.service.SuggestPlan(ctx, orderID)
		if err != nil {
			h.Error(c, err)
			return
		}
		plan = suggestion.LinePlans()
	}

	result, err := h.service.Fulfill(ctx, orderID, plan, req.Strategy)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Backorder handles POST /orders/:id/backorder
func (h *OrdersHandler) Backorder(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.CreateBackorder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrdersHandler) Cancel(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Invoice handles POST /orders/:id/invoice
func (h *OrdersHandler) Invoice(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	inv, err := h.billing.GenerateInvoice(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, inv)
}
