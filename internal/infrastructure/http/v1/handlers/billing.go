package handlers

import (
	"github.com/gin-gonic/gin"

	"erpledger/internal/domain/billing"
	"erpledger/internal/infrastructure/http/v1/dto"
)

// BillingHandler handles invoices and credit notes.
type BillingHandler struct {
	*BaseHandler
	service *billing.Service
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(base *BaseHandler, service *billing.Service) *BillingHandler {
	return &BillingHandler{BaseHandler: base, service: service}
}

// GetInvoice handles GET /invoices/:id
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	invoiceID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// GetCreditNote handles GET /credit-notes/:id
func (h *BillingHandler) GetCreditNote(c *gin.Context) {
	noteID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	note, err := h.service.GetCreditNote(c.Request.Context(), noteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, note)
}

// ApplyCredit handles POST /credit-notes/:id/apply
func (h *BillingHandler) ApplyCredit(c *gin.Context) {
	noteID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ApplyCreditRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, err := req.ParsedAmount()
	if err != nil {
		h.Error(c, err)
		return
	}
	settlement, err := h.service.ApplyCreditToInvoice(c.Request.Context(), noteID, req.InvoiceID, amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, settlement)
}
