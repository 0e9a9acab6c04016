package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/domain/reports"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves ledger, traceability and stock reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Ledger handles GET /ledger
func (h *ReportsHandler) Ledger(c *gin.Context) {
	var q dto.LedgerQuery
	if !h.BindQuery(c, &q) {
		return
	}
	entries, err := h.service.Ledger(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(entries))
}

// StockLevels handles GET /reports/stock-levels
func (h *ReportsHandler) StockLevels(c *gin.Context) {
	var q dto.StockLevelQuery
	if !h.BindQuery(c, &q) {
		return
	}
	levels, err := h.service.StockLevels(c.Request.Context(), q.ItemType)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(levels))
}

// LowStock handles GET /reports/low-stock
func (h *ReportsHandler) LowStock(c *gin.Context) {
	levels, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(levels))
}

// Reconciliation handles GET /reports/reconciliation
func (h *ReportsHandler) Reconciliation(c *gin.Context) {
	rec, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// TraceProductLot handles GET /trace/product-lots/:lot
func (h *ReportsHandler) TraceProductLot(c *gin.Context) {
	trace, err := h.service.TraceProductLot(c.Request.Context(), c.Param("lot"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, trace)
}

// TraceComponentLot handles GET /trace/component-lots/:componentId/:lot
func (h *ReportsHandler) TraceComponentLot(c *gin.Context) {
	componentID, ok := h.ParamID(c, "componentId")
	if !ok {
		return
	}
	uses, err := h.service.TraceComponentLot(c.Request.Context(), componentID, c.Param("lot"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(uses))
}
