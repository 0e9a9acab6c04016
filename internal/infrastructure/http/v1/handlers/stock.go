package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/domain/inventory"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// StockHandler handles receipts, adjustments and stock queries.
type StockHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *inventory.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Receive handles POST /stock/:itemType/:itemId/batches
func (h *StockHandler) Receive(c *gin.Context) {
	ref, ok := h.ParamItemRef(c)
	if !ok {
		return
	}
	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	receipt, err := h.service.ReceiveStock(c.Request.Context(), req.ToInput(ref))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, receipt)
}

// Adjust handles POST /stock/:itemType/:itemId/adjustments
func (h *StockHandler) Adjust(c *gin.Context) {
	ref, ok := h.ParamItemRef(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	adj, err := h.service.AdjustStock(c.Request.Context(), req.ToInput(ref))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, adj)
}

// Get handles GET /stock/:itemType/:itemId
func (h *StockHandler) Get(c *gin.Context) {
	ref, ok := h.ParamItemRef(c)
	if !ok {
		return
	}
	batches, err := h.service.Batches(c.Request.Context(), ref)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatches(ref, batches))
}
